package bootstrap

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/logger"
	"github.com/tokenized/vesting-charm/internal/platform/config"
	"github.com/tokenized/vesting-charm/pkg/vesting"
)

func NewContextWithDevelopmentLogger() context.Context {
	ctx := context.Background()

	logPath := os.Getenv("LOG_FILE_PATH")
	ctx = ContextWithLogger(ctx, strings.ToUpper(os.Getenv("DEVELOPMENT")) == "TRUE", logPath)

	return ctx
}

// ContextWithLogger returns a context carrying a log config. Validator verbose logs are only
// enabled in development.
func ContextWithLogger(ctx context.Context, isDevelopment bool, filePath string) context.Context {
	var logConfig *logger.Config
	if isDevelopment {
		logConfig = logger.NewDevelopmentConfig()
		logConfig.Main.Format |= logger.IncludeSystem | logger.IncludeMicro
		logConfig.EnableSubSystem(vesting.SubSystem)
	} else {
		logConfig = logger.NewProductionConfig()
	}

	if len(filePath) > 0 {
		logConfig.Main.AddFile(filePath)
	}

	return logger.ContextWithLogConfig(ctx, logConfig)
}

func NewConfigFromEnv(ctx context.Context) *config.Config {
	cfg, err := config.Environment()
	if err != nil {
		logger.Fatal(ctx, "Parsing Config : %s", err)
	}

	// Mask sensitive values
	cfgSafe := config.SafeConfig(*cfg)
	cfgJSON, err := json.MarshalIndent(cfgSafe, "", "    ")
	if err != nil {
		logger.Fatal(ctx, "Marshalling Config to JSON : %s", err)
	}
	logger.Info(ctx, "Config : %v", string(cfgJSON))

	return cfg
}

func NewNetwork(ctx context.Context, cfg *config.Config) bitcoin.Network {
	net := bitcoin.NetworkFromString(cfg.Bitcoin.Network)
	if net == bitcoin.InvalidNet {
		logger.Fatal(ctx, "Invalid bitcoin network : %s", cfg.Bitcoin.Network)
	}
	return net
}

func NewUnlockMode(ctx context.Context, cfg *config.Config) vesting.UnlockMode {
	mode, err := vesting.UnlockModeFromString(cfg.Vesting.UnlockMode)
	if err != nil {
		logger.Fatal(ctx, "Invalid unlock mode : %s", err)
	}
	return mode
}

// NewClaimantKey returns the configured claimant key, or nil when none is set.
func NewClaimantKey(ctx context.Context, cfg *config.Config) *bitcoin.Key {
	if len(cfg.Vesting.ClaimantKey) == 0 {
		return nil
	}

	key, err := bitcoin.KeyFromStr(cfg.Vesting.ClaimantKey)
	if err != nil {
		logger.Fatal(ctx, "Invalid claimant key : %s", err)
	}
	return &key
}

func NewValidator() *vesting.Validator {
	return vesting.NewValidator(vesting.NewBinaryCodec(), vesting.NewSignatureAuthorizer())
}
