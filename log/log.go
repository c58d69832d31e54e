package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcriptFile *os.File
	logMu          sync.Mutex
	logReady       bool
	debugEnabled   bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: LINGUAVOICE_LOG_PATH environment variable
	envPath := os.Getenv("LINGUAVOICE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

// SetDebug enables debug-level events (validation rejections and the like).
func SetDebug(on bool) {
	debugEnabled = on
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcriptPath := filepath.Join(dir, "transcript_log.txt")
	transcriptFile, err = os.OpenFile(transcriptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcriptFile != nil {
		transcriptFile.Close()
		transcriptFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...any) {
	if logReady && debugEnabled {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// Transcript appends an accepted transcript to the audit file.
func Transcript(lang, text, audioFile string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	file := audioFile
	if file == "" {
		file = "-"
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\t%s\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, lang, file, text)
	transcriptFile.WriteString(line)
}

// Rejection records a validation rejection at debug level. Rejections are an
// expected filtering outcome, not errors.
func Rejection(lang, reason, text string) {
	if logReady && debugEnabled {
		diagLog.Debug().
			Str("lang", lang).
			Str("reason", reason).
			Str("text", text).
			Msg("utterance_rejected")
	}
}

func PipelineStart(languages []string, device string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Strs("languages", languages).
		Str("device", device).
		Msg("pipeline_start")
}

func PipelineStop(transcripts int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("transcripts", transcripts).
		Msg("pipeline_stop")
}
