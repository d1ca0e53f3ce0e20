package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/collector"
	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/model"
	"FuyouSentinel/internal/notifier"
)

func main() {
	input := flag.String("input", "", "path to a JSON export {currentIncome, shifts, workplaces}")
	preset := flag.String("preset", engine.DefaultPreset, "limit preset: legacy, 2025, student2025")
	at := flag.String("at", "", "evaluate as of this date (YYYY-MM-DD); defaults to today")
	tz := flag.String("tz", "Asia/Tokyo", "timezone for month boundaries")
	text := flag.Bool("text", false, "print the chat-formatted report instead of JSON")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	limits, err := engine.Preset(*preset)
	if err != nil {
		logrus.Fatalf("limits: %v", err)
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		logrus.Fatalf("timezone: %v", err)
	}

	var clock engine.Clock = engine.SystemClock{Location: loc}
	if *at != "" {
		t, err := time.ParseInLocation(model.DateLayout, *at, loc)
		if err != nil {
			logrus.Fatalf("parse -at: %v", err)
		}
		clock = engine.FixedClock(t)
	}

	exp, err := collector.LoadExport(*input)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	income := calculator.SumEarnings(exp.Shifts)
	if exp.CurrentIncome != nil {
		income = *exp.CurrentIncome
	}

	start := time.Now()
	eng := engine.New(limits, clock)
	rep := eng.GenerateDetailedReport(income, exp.Shifts, exp.Workplaces)

	if *text {
		fmt.Println(notifier.FormatReport(rep, clock.Now()))
		fmt.Println(notifier.FormatActionPlan(rep.ActionPlan))
		return
	}

	out, err := json.MarshalIndent(model.ReportEnvelope{
		ReportID:    uuid.NewString(),
		GeneratedAt: clock.Now(),
		DurationMs:  time.Since(start).Milliseconds(),
		Report:      rep,
	}, "", "  ")
	if err != nil {
		logrus.Fatalf("encode report: %v", err)
	}
	fmt.Println(string(out))
}
