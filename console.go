package main

import (
	"database/sql"
	"fmt"
	"strings"

	"linguavoice/langid"
	"linguavoice/pipeline"
	"linguavoice/store"
	"linguavoice/vocab"
)

func newValidator() *langid.Validator {
	return langid.NewValidator(langid.NewDetector())
}

// console holds the interactive state: which user and language practice
// commands apply to.
type console struct {
	db     *sql.DB
	pipe   *pipeline.Pipeline
	scorer *vocab.Scorer
	lang   string
}

func (c *console) run(cmd, arg string) {
	switch cmd {
	case "correct", "wrong":
		if arg == "" {
			fmt.Printf("usage: %s <word>\n", cmd)
			return
		}
		res, err := c.scorer.Record(c.pipe.ActiveUser(), c.lang, strings.ToLower(arg), cmd == "correct")
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("+%d XP (total %d, %s, streak %d days, mastery %d)\n",
			res.XPAwarded, res.TotalXP, res.Level, res.StreakDays, res.MasteryLevel)

	case "words":
		entries, err := store.ListVocabulary(c.db, c.pipe.ActiveUser(), c.lang, 20)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, e := range entries {
			meaning := e.Meaning
			if meaning == "" {
				meaning = "?"
			}
			fmt.Printf("  %-20s x%-4d mastery %d  %s\n", e.Word, e.Frequency, e.MasteryLevel, meaning)
		}

	case "oov":
		entries, err := store.ListOOV(c.db, c.pipe.ActiveUser(), c.lang)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, e := range entries {
			fmt.Printf("  %-20s seen %d times since %s\n",
				e.Word, e.Occurrences, e.FirstSeen.Format(store.DateFormat))
		}

	case "weak":
		entries, err := store.WeakWords(c.db, c.pipe.ActiveUser(), c.lang, 10)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, e := range entries {
			fmt.Printf("  %-20s mastery %d (%d/%d correct)\n",
				e.Word, e.MasteryLevel, e.CorrectAttempts, e.CorrectAttempts+e.IncorrectAttempts)
		}

	case "recent":
		grouped, err := store.NewWordsByDay(c.db, c.pipe.ActiveUser(), c.lang, 7)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for date, words := range grouped {
			fmt.Printf("  %s: %s\n", date, strings.Join(words, ", "))
		}

	case "stats":
		p, err := store.GetProgress(c.db, c.pipe.ActiveUser(), c.lang)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if p == nil {
			fmt.Printf("no activity yet for %s/%s\n", c.pipe.ActiveUser(), c.lang)
			return
		}
		fmt.Printf("%s/%s: %d XP, %s, streak %d days\n",
			p.UserID, p.Language, p.TotalXP, vocab.LevelForXP(p.TotalXP), p.StreakDays)

	case "user":
		if arg == "" {
			fmt.Println("usage: user <id>")
			return
		}
		c.pipe.SetActiveUser(arg)
		fmt.Printf("active user: %s\n", arg)

	case "lang":
		if arg == "" {
			fmt.Println("usage: lang <code>")
			return
		}
		c.lang = arg
		c.pipe.SetActiveLanguage(arg)
		fmt.Printf("active language: %s\n", arg)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

// consoleSink prints pipeline events to stdout.
type consoleSink struct{}

func (consoleSink) ListeningStart(languages []string, device string) {
	fmt.Printf("Listening on %s for %s\n", device, strings.Join(languages, ", "))
}

func (consoleSink) ListeningStop(transcripts int) {
	fmt.Printf("Stopped after %d transcripts\n", transcripts)
}

func (consoleSink) ChunkLevel(float64, float64) {}

func (consoleSink) Transcript(language, text string) {
	fmt.Printf("[%s] %s\n", language, text)
}

func (consoleSink) WordsLearned(language string, newWords, oovWords []string) {
	fmt.Printf("  new %s words: %s\n", language, strings.Join(newWords, ", "))
	if len(oovWords) > 0 {
		fmt.Printf("  out of vocabulary: %s\n", strings.Join(oovWords, ", "))
	}
}
