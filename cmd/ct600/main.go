// Command ct600 files a Company Tax Return through the Government Gateway.
//
// The return data comes from a YAML file of box values plus the declaring
// principal; the accounts and computations iXBRL documents are attached
// from files. With -build-only the assembled envelope, integrity mark
// included, is written to stdout instead of being submitted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/openfiling/go-govtalk/internal/config"
	"github.com/openfiling/go-govtalk/internal/submitter"
	"github.com/openfiling/go-govtalk/pkg/ct600"
)

type returnFile struct {
	Principal struct {
		Title     string `yaml:"title"`
		FirstName string `yaml:"firstName"`
		LastName  string `yaml:"lastName"`
		Email     string `yaml:"email"`
		Phone     string `yaml:"phone"`
	} `yaml:"principal"`
	Values map[int]any `yaml:"values"`
}

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "client configuration file")
		returnPath   = flag.String("return", "", "return data file (box values and principal)")
		accounts     = flag.String("accounts", "", "statutory accounts iXBRL file")
		computations = flag.String("computations", "", "tax computations iXBRL file")
		buildOnly    = flag.Bool("build-only", false, "write the assembled envelope to stdout and exit")
		verbose      = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *returnPath, *accounts, *computations, *buildOnly, logger); err != nil {
		logger.Error("filing failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, returnPath, accountsPath, computationsPath string, buildOnly bool, logger *slog.Logger) error {
	if returnPath == "" || accountsPath == "" || computationsPath == "" {
		return fmt.Errorf("-return, -accounts and -computations are required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ret, err := loadReturn(returnPath, accountsPath, computationsPath)
	if err != nil {
		return err
	}

	ctrl := submitter.New(nil, cfg, logger)

	if buildOnly {
		doc, err := ctrl.BuildSubmission(ret)
		if err != nil {
			return err
		}
		doc.Indent(2)
		_, err = doc.WriteTo(os.Stdout)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := ctrl.Submit(ctx, ret)
	if result != nil && result.CorrelationID != "" {
		logger.Info("submission lifecycle finished",
			"state", result.State.String(),
			"correlationId", result.CorrelationID,
			"polls", result.Polls)
	}
	if err != nil {
		return err
	}

	for _, m := range result.Messages {
		fmt.Println(m)
	}
	return nil
}

func loadReturn(returnPath, accountsPath, computationsPath string) (*ct600.Return, error) {
	data, err := os.ReadFile(returnPath)
	if err != nil {
		return nil, fmt.Errorf("reading return file: %w", err)
	}
	var rf returnFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing return file: %w", err)
	}

	accountsData, err := os.ReadFile(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	computationsData, err := os.ReadFile(computationsPath)
	if err != nil {
		return nil, fmt.Errorf("reading computations: %w", err)
	}

	return ct600.NewReturn(
		ct600.Values(rf.Values),
		ct600.Principal{
			Title:     rf.Principal.Title,
			FirstName: rf.Principal.FirstName,
			LastName:  rf.Principal.LastName,
			Email:     rf.Principal.Email,
			Phone:     rf.Principal.Phone,
		},
		[]ct600.Attachment{
			{Role: ct600.RoleAccounts, Filename: accountsPath, MediaType: "application/xhtml+xml", Data: accountsData},
			{Role: ct600.RoleComputations, Filename: computationsPath, MediaType: "application/xhtml+xml", Data: computationsData},
		},
	)
}
