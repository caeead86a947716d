package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/grouplink/group"
	"github.com/danmuck/grouplink/internal/logging"
)

// printCallbacks writes every dispatched event to stdout.
type printCallbacks struct{}

func (printCallbacks) OnStop(_ *struct{}, name string) {
	fmt.Printf("event: stop group=%s\n", name)
}

func (printCallbacks) OnStart(_ *struct{}, name string, value, eventNumber int, nodeIDs []int) {
	fmt.Printf("event: start group=%s value=%d event=%d members=%v\n", name, value, eventNumber, nodeIDs)
}

func (printCallbacks) OnFinish(_ *struct{}, name string, eventNumber int) {
	fmt.Printf("event: finish group=%s event=%d\n", name, eventNumber)
}

func (printCallbacks) OnTerminate(_ *struct{}, name string) {
	fmt.Printf("event: terminate group=%s\n", name)
}

func (printCallbacks) OnSetID(_ *struct{}, name string, id int) {
	fmt.Printf("event: set_id group=%s id=%d\n", name, id)
}

func main() {
	configPath := flag.String("config", "groupctl.toml", "path to the groupctl TOML config")
	flag.Parse()
	logging.ConfigureRuntime()

	cfg, err := loadTargetConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load groupctl config")
	}

	session, err := group.Init(&struct{}{}, group.Config{
		Network: cfg.Network,
		Address: cfg.Address,
	}, cfg.ProgramName, cfg.Level, printCallbacks{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to coordinator")
	}
	log.Info().
		Str("coordinator", cfg.Network+"://"+cfg.Address).
		Str("program", cfg.ProgramName).
		Msg("connected")

	if err := runCommandLoop(session, os.Stdin); err != nil {
		log.Error().Err(err).Msg("session ended")
	}
	if err := session.Exit(); err != nil && !errors.Is(err, group.ErrInvalidHandle) {
		log.Warn().Err(err).Msg("exit reported an error")
	}
}

func runCommandLoop(session *group.Session[*struct{}], in *os.File) error {
	fmt.Println("commands: join <group> | leave <group> | done <group> <event> | listen | exit")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "join":
			if len(fields) != 2 {
				fmt.Println("usage: join <group>")
				continue
			}
			err = session.Join(fields[1])
		case "leave":
			if len(fields) != 2 {
				fmt.Println("usage: leave <group>")
				continue
			}
			err = session.Leave(fields[1])
		case "done":
			if len(fields) != 3 {
				fmt.Println("usage: done <group> <event>")
				continue
			}
			var eventNr int
			eventNr, err = strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("event must be an integer")
				continue
			}
			err = session.Done(fields[1], eventNr)
		case "listen":
			fmt.Println("listening for events, connection close ends the loop")
			for {
				if err = session.Dispatch(); err != nil {
					break
				}
			}
			return err
		case "exit", "quit":
			return nil
		default:
			fmt.Printf("unknown command %q\n", fields[0])
			continue
		}
		if err != nil {
			if errors.Is(err, group.ErrInvalidArgument) {
				fmt.Printf("rejected: %v\n", err)
				continue
			}
			return err
		}
	}
}
