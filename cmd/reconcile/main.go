// SPDX-License-Identifier: GPL-3.0-only

// Command reconcile re-runs identity deletion for every account whose
// deletion token was consumed, covering requests that ended in a
// DeletionFailed response.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deletion-server/commons"
	"deletion-server/db"
	"deletion-server/deletion"
	"deletion-server/identity"
)

func main() {
	var (
		since  time.Duration
		dryRun bool
	)
	flag.DurationVar(&since, "since", 7*24*time.Hour, "Only consider tokens consumed within this window")
	flag.BoolVar(&dryRun, "dry-run", false, "List the accounts that would be deleted without deleting them")
	flag.String("env-file", "", "Optional env file to load")
	flag.Parse()

	commons.LoadEnvFile()
	commons.InitLogger()

	cfg, err := commons.LoadConfig()
	if err != nil {
		commons.Logger.Fatalf("Invalid configuration: %v", err)
	}
	if since <= 0 {
		commons.Logger.Fatal("-since must be positive")
	}

	conn, err := db.Open(cfg.DB)
	if err != nil {
		commons.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	var deleter deletion.AccountDeleter
	if cfg.Identity.Provider == "gotrue" {
		deleter = identity.NewGoTrueAdmin(cfg.Identity.SupabaseURL, cfg.Identity.ServiceRoleKey)
	} else {
		deleter = identity.NewLocalAdmin(conn)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := deletion.NewReconciler(deletion.NewGormTokenStore(conn), deleter)
	report, err := reconciler.Run(ctx, time.Now().UTC().Add(-since), dryRun)
	if err != nil {
		commons.Logger.Fatalf("Reconciliation aborted after %d account(s): %v", report.Scanned, err)
	}
	commons.Logger.Infof("Reconciliation finished: scanned=%d deleted=%d already_gone=%d failed=%d dry_run=%v",
		report.Scanned, report.Deleted, report.AlreadyGone, report.Failed, dryRun)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
