package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matchday-bet/matchday/internal/app"
	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/security"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to $"+config.ConfigPathEnv+")")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [serve|migrate|admin-totp]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "serve"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := config.AppConfig{ConfigPath: *configPath}
	var err error
	switch command {
	case "serve":
		err = app.RunServer(ctx, appCfg)
	case "migrate":
		err = app.Migrate(ctx, appCfg)
	case "admin-totp":
		err = printAdminTOTP()
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Errorf("%s failed", command)
		stop()
		os.Exit(1)
	}
}

// printAdminTOTP enrolls a new second factor for the admin API.
func printAdminTOTP() error {
	secret, url, err := security.GenerateTOTPSecret("matchday", "admin")
	if err != nil {
		return err
	}
	fmt.Printf("admin.totp_secret: %s\n", secret)
	fmt.Printf("otpauth url:       %s\n", url)
	return nil
}
