// Command nmcore loads a scenario document (pkg/config) and runs its
// connections through the bond and Wi-Fi decision engines, using a
// per-subcommand flag.FlagSet dispatched off os.Args[1].
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/SISW-MOM/NetworkManager/internal/bondplan"
	"github.com/SISW-MOM/NetworkManager/internal/connection"
	"github.com/SISW-MOM/NetworkManager/internal/wifi"
	"github.com/SISW-MOM/NetworkManager/pkg/config"
)

const version = "1.0.0"

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	if isTerminal(os.Stdout) {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "verify":
			runVerify()
			return
		case "explain":
			runExplain()
			return
		case "version", "--version", "-v":
			fmt.Printf("nmcore v%s\n", version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}
	printHelp()
	os.Exit(1)
}

func printHelp() {
	fmt.Println("nmcore: NetworkManager bond/wifi decision-engine runner")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nmcore verify -scenario <path>")
	fmt.Println("  nmcore verify -scenario <path> -beacon <hex-file> -connection <name> [-lock-bssid]")
	fmt.Println("  nmcore explain -scenario <path> -connection <name>")
	fmt.Println("  nmcore version")
	fmt.Println("  nmcore help")
}

func runVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	scenarioPath := fs.String("scenario", "", "path to a scenario YAML document")
	beaconPath := fs.String("beacon", "", "path to a hex-encoded raw 802.11 beacon frame")
	connName := fs.String("connection", "", "connection name to complete against (with -beacon)")
	lockBSSID := fs.Bool("lock-bssid", false, "pin the completed connection to the beacon's BSSID (with -beacon)")
	fs.Parse(os.Args[2:])

	if *beaconPath != "" {
		os.Exit(runBeaconVerify(*scenarioPath, *beaconPath, *connName, *lockBSSID))
	}

	if *scenarioPath == "" {
		log.Fatal("verify requires -scenario (or -beacon)")
	}

	scenario, err := config.Load(*scenarioPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load scenario")
	}

	exitCode := 0
	for _, run := range scenario.Runs {
		fields := logrus.Fields{"scenario": run.Name}

		conn, ok := scenario.Connections[run.Connection]
		if !ok {
			log.WithFields(fields).WithField("result", "error").
				Error("scenario references unknown connection")
			exitCode = 1
			continue
		}

		built := buildConnection(conn)

		if err := conn.Bond.Verify(built); err != nil {
			logResult(fields, "bond", err)
			if !connection.IsNormalizable(err) {
				exitCode = 1
			}
		} else {
			log.WithFields(fields).WithField("kind", "bond").WithField("result", "ok").Info("verified")
		}

		if run.AccessPoint == "" {
			continue
		}
		ap, ok := scenario.AccessPoints[run.AccessPoint]
		if !ok {
			log.WithFields(fields).WithField("result", "error").
				Error("scenario references unknown access point")
			exitCode = 1
			continue
		}
		if err := wifi.Complete(ap, run.LockBSSID, built); err != nil {
			logResult(fields, "wifi", err)
			exitCode = 1
		} else {
			log.WithFields(fields).WithField("kind", "wifi").WithField("result", "ok").Info("completed")
		}
	}

	os.Exit(exitCode)
}

// buildConnection assembles a fresh connection.Connection out of a scenario
// connection's bond setting plus whatever wireless-security/802.1x/infiniband
// documents it carries.
func buildConnection(conn *config.Connection) *connection.Connection {
	built := connection.New()
	built.Set(conn.Bond)
	if conn.InfiniBand {
		built.Set(connection.InfiniBandSetting{})
	}
	if sec := conn.WirelessSecurity.ToSetting(); sec != nil {
		built.Set(sec)
	}
	if eap := conn.IEEE8021X.ToSetting(); eap != nil {
		built.Set(eap)
	}
	return built
}

// runBeaconVerify reads a hex-encoded raw 802.11 frame from path, decodes it
// into an APCapability, and completes the named scenario connection against
// it. It returns the process exit code.
func runBeaconVerify(scenarioPath, beaconPath, connName string, lockBSSID bool) int {
	if scenarioPath == "" || connName == "" {
		log.Fatal("-beacon requires -scenario and -connection")
	}

	scenario, err := config.Load(scenarioPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load scenario")
	}
	conn, ok := scenario.Connections[connName]
	if !ok {
		log.Fatalf("no such connection: %s", connName)
	}

	raw, err := os.ReadFile(beaconPath)
	if err != nil {
		log.WithError(err).Fatal("failed to read beacon file")
	}
	frame, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		log.WithError(err).Fatal("beacon file is not valid hex")
	}

	ap, err := wifi.ParseBeacon(frame)
	if err != nil {
		log.WithError(err).Fatal("failed to parse beacon frame")
	}

	fields := logrus.Fields{"ssid": ap.SSID, "bssid": ap.BSSID}
	built := buildConnection(conn)

	if err := conn.Bond.Verify(built); err != nil && !connection.IsNormalizable(err) {
		logResult(fields, "bond", err)
		return 1
	}

	if err := wifi.Complete(ap, lockBSSID, built); err != nil {
		logResult(fields, "wifi", err)
		return 1
	}
	log.WithFields(fields).WithField("kind", "wifi").WithField("result", "ok").Info("completed against parsed beacon")
	return 0
}

func logResult(fields logrus.Fields, kind string, err error) {
	entry := log.WithFields(fields).WithField("kind", kind)
	if connection.IsNormalizable(err) {
		entry.WithField("result", "normalizable").WithField("detail", err.Error()).Warn("needs rewrite")
		return
	}
	entry.WithField("result", "fatal").WithError(err).Error("verification failed")
}

func runExplain() {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	scenarioPath := fs.String("scenario", "", "path to a scenario YAML document")
	connName := fs.String("connection", "", "connection name to explain")
	fs.Parse(os.Args[2:])

	if *scenarioPath == "" || *connName == "" {
		log.Fatal("explain requires -scenario and -connection")
	}

	scenario, err := config.Load(*scenarioPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load scenario")
	}

	conn, ok := scenario.Connections[*connName]
	if !ok {
		log.Fatalf("no such connection: %s", *connName)
	}

	built := buildConnection(conn)
	if err := conn.Bond.Verify(built); err != nil && !connection.IsNormalizable(err) {
		log.WithError(err).Fatal("connection does not verify")
	}

	plan, err := bondplan.Plan(conn.Bond, *connName)
	if err != nil {
		log.WithError(err).Fatal("failed to plan bond")
	}

	log.WithFields(logrus.Fields{
		"name":            *connName,
		"mode":            plan.Mode,
		"miimon":          plan.MiimonInterval,
		"up_delay":        plan.UpDelay,
		"down_delay":      plan.DownDelay,
		"arp_interval":    plan.ArpInterval,
		"arp_ip_targets":  plan.ArpIpTargets,
		"primary":         plan.Primary,
		"lacp_rate":       plan.LacpRate,
		"ad_select":       plan.AdSelect,
		"min_links":       plan.MinLinks,
		"primary_reselect": plan.PrimaryReselect,
		"fail_over_mac":   plan.FailOverMac,
		"num_grat_arp":    plan.NumGratArp,
		"num_peer_notif":  plan.NumPeerNotif,
	}).Info("bonding plan")
}
