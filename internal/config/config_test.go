package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Rewards.InitialBalance != 5000 {
		t.Fatalf("expected initial balance 5000, got %d", cfg.Rewards.InitialBalance)
	}
	if cfg.Rewards.Regular.BetLimit != 2 || cfg.Rewards.VIP.BetLimit != 4 {
		t.Fatalf("unexpected bet limits: %+v / %+v", cfg.Rewards.Regular, cfg.Rewards.VIP)
	}
	if cfg.Rewards.WithdrawalMinimum != 30000 || cfg.Rewards.WithdrawalFee != 3000 || cfg.Rewards.VIPFee != 3000 {
		t.Fatalf("unexpected fees: %+v", cfg.Rewards)
	}
	if len(cfg.Rewards.SpinTable) != 6 {
		t.Fatalf("expected 6 spin slices, got %d", len(cfg.Rewards.SpinTable))
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("MATCHDAY_TEST_VIP_CODE", "rotated-code")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rewards:
  vip_activation_code: "${MATCHDAY_TEST_VIP_CODE}"
  withdrawal_activation_code: "wd-code"
  vip:
    bet_limit: 6
    win_payout: 9000
    loss_penalty: 500
fixtures:
  timeout: 3s
`
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Rewards.VIPActivationCode != "rotated-code" {
		t.Fatalf("expected expanded code, got %q", cfg.Rewards.VIPActivationCode)
	}
	if cfg.Rewards.VIP.BetLimit != 6 || cfg.Rewards.VIP.WinPayout != 9000 {
		t.Fatalf("vip tier not applied: %+v", cfg.Rewards.VIP)
	}
	if cfg.Rewards.Regular.BetLimit != 2 {
		t.Fatalf("regular tier should keep defaults, got %+v", cfg.Rewards.Regular)
	}
	if cfg.Fixtures.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.Fixtures.Timeout)
	}
}

func TestValidateRejectsEmptySpinTable(t *testing.T) {
	cfg := Default()
	cfg.Rewards.SpinTable = []SpinSlice{{Amount: 1000, Weight: 0}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for zero total weight")
	}
}

func TestValidateRejectsUnknownEventsDriver(t *testing.T) {
	cfg := Default()
	cfg.Events.Driver = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown driver")
	}
}

func TestResolveConfigPathPrefersFlag(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/etc/matchday/env.yaml")
	if got := ResolveConfigPath("  ./custom.yaml "); got != "custom.yaml" {
		t.Fatalf("expected flag path, got %q", got)
	}
	if got := ResolveConfigPath(""); got != "/etc/matchday/env.yaml" {
		t.Fatalf("expected env path, got %q", got)
	}
}

func TestValidateRejectsTOTPWithoutToken(t *testing.T) {
	cfg := Default()
	cfg.Admin.TOTPSecret = "JBSWY3DPEHPK3PXP"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for totp secret without admin token")
	}
	cfg.Admin.Token = "tok"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
