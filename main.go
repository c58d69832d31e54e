package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"linguavoice/audio"
	"linguavoice/chunk"
	"linguavoice/encoder"
	"linguavoice/log"
	"linguavoice/meaning"
	"linguavoice/pipeline"
	"linguavoice/shutdown"
	"linguavoice/speech"
	"linguavoice/store"
	"linguavoice/vocab"
)

var version = "dev"

func main() {
	dbFlag := flag.String("db", "linguavoice.db", "sqlite database path")
	modelsFlag := flag.String("models", "models", "directory holding one speech model per language code")
	langsFlag := flag.String("langs", "en,es,hi", "comma-separated language codes to recognize")
	userFlag := flag.String("user", "default", "active user id")
	langFlag := flag.String("lang", "", "restrict transcripts to one language (empty = all)")
	fakeFlag := flag.String("fake", "", "replay a WAV file instead of capturing from a microphone")
	audioDirFlag := flag.String("audiodir", "audio_chunks", "directory for persisted audio chunks")
	formatFlag := flag.String("format", "wav", "chunk format: wav or flac")
	setupFlag := flag.Bool("setup", false, "select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "use named microphone device")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	resetFlag := flag.Bool("reset", false, "clear all learning data for -user and exit")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("linguavoice %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	log.SetDebug(*debugFlag)

	db, err := store.Open(*dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if *resetFlag {
		if err := store.ResetUserData(db, *userFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error resetting user data: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared all learning data for %s\n", *userFlag)
		return
	}

	langs := splitLangs(*langsFlag)
	if len(langs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no languages configured")
		os.Exit(1)
	}

	// Model loading is fatal on any failure: no partial-language mode.
	pool, err := speech.NewPool(speech.NewVoskFactory(*modelsFlag), langs)
	if err != nil {
		log.Errorf("recognizer init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error loading recognizers: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var audioCtx audio.Context
	if *fakeFlag != "" {
		audioCtx, err = audio.NewFakeContext(*fakeFlag, true)
	} else {
		audioCtx, err = audio.NewContext()
	}
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := audioCtx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(audioCtx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	capture, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	chunks, err := chunk.NewStore(*audioDirFlag, *formatFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	locks := vocab.NewKeyedMutex()
	tracker := vocab.NewTracker(db, locks)
	scorer := vocab.NewScorer(db, locks)

	enricher := meaning.NewEnricher(meaning.NewClient(), tracker, 4)
	enricher.Start(context.Background())
	defer enricher.Close()

	pipe := pipeline.New(pipeline.Config{
		Capture:     capture,
		Recognizers: pool,
		Validator:   newValidator(),
		Chunks:      chunks,
		DB:          db,
		Tracker:     tracker,
		Enricher:    enricher,
		Sink:        &consoleSink{},
		UserID:      *userFlag,
	})
	pipe.SetActiveLanguage(*langFlag)

	if err := pipe.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting pipeline: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	practiceLang := *langFlag
	if practiceLang == "" {
		practiceLang = langs[0]
	}
	consoleDone := make(chan struct{})
	go runConsole(&console{db: db, pipe: pipe, scorer: scorer, lang: practiceLang}, consoleDone)

	select {
	case <-sigChan:
	case <-consoleDone:
	}

	pipe.Stop()
}

func splitLangs(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// runConsole drives the interactive command loop on stdin until EOF or quit.
func runConsole(c *console, done chan struct{}) {
	defer close(done)

	fmt.Println("Commands: correct <word> | wrong <word> | words | oov | recent | stats | weak | user <id> | lang <code> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, arg := fields[0], ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		if cmd == "quit" || cmd == "exit" {
			return
		}
		c.run(cmd, arg)
	}
}
