package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/Onahi7/napps-portal/apps/callback/echo"
	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/payment"
	emailsvc "github.com/Onahi7/napps-portal/services/email"
	logsvc "github.com/Onahi7/napps-portal/services/logger"
	"github.com/Onahi7/napps-portal/services/napps"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	std := log.New(os.Stdout, "CALLBACK : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up local store; fall back to memory if the profile DB cannot open
	var kv draftstore.KV
	sqliteKV, err := draftstore.OpenSQLiteKV(conf.Storage.Path)
	if err != nil {
		logger.Error(fmt.Sprintf("opening local store, falling back to memory: %v", err), err)
		kv = draftstore.NewInMemKV()
	} else {
		kv = sqliteKV
		defer func() { _ = sqliteKV.Close() }()
	}
	store := draftstore.NewStore(kv, logger)

	// set up services
	client := napps.NewClient(conf, logger)
	paySvc := payment.NewService(client, logger)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// =========================================================================
	// Start Callback Service

	logger.Info(fmt.Sprintf("Callback listener starting on %s : version %q", conf.Callback.Address(), conf.Build))
	defer logger.Info("Callback listener stopped")

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Store:      store,
			PaymentSvc: paySvc,
			EmailSvc:   mailSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Callback.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
