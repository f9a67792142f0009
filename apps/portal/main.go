package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/core/fees"
	"github.com/Onahi7/napps-portal/core/levy"
	"github.com/Onahi7/napps-portal/core/payment"
	"github.com/Onahi7/napps-portal/core/registration"
	"github.com/Onahi7/napps-portal/core/session"
	logsvc "github.com/Onahi7/napps-portal/services/logger"
	"github.com/Onahi7/napps-portal/services/napps"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "PORTAL : ", log.LstdFlags)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}

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
	validate, translator := core.NewValidator()
	client := napps.NewClient(conf, logger)

	cli := &commandLine{
		conf:       conf,
		translator: translator,
		logger:     logger,
		store:      store,
		client:     client,
		wizard:     registration.NewWizard(client, store, validate, logger),
		levySvc:    levy.NewService(client, store, validate, logger),
		feeSvc:     fees.NewService(client, logger),
		paySvc:     payment.NewService(client, logger),
		sessSvc:    session.NewService(client, store, logger),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
