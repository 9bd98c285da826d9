// Command bakasync synchronizes a candidate subtitle track against a
// timing-accurate reference track, writing the adjusted result in
// place or to an explicit output path.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lsilvatti/bakasync/internal/caption"
	"github.com/lsilvatti/bakasync/internal/config"
	"github.com/lsilvatti/bakasync/internal/historydb"
	"github.com/lsilvatti/bakasync/internal/mkvprobe"
	"github.com/lsilvatti/bakasync/internal/srtio"
	"github.com/lsilvatti/bakasync/internal/synccache"
	"github.com/lsilvatti/bakasync/internal/synccompare"
	"github.com/lsilvatti/bakasync/internal/syncengine"
	"github.com/lsilvatti/bakasync/pkg/utils"
)

const usageExitCode = utils.PanicExitCode

func main() {
	defer utils.RecoverPanic()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bakasync", flag.ContinueOnError)
	out := fs.String("out", "", "output path for the adjusted candidate (default: overwrite candidate)")
	duration := fs.Float64("duration", 0, "video duration in seconds, for tail-end sanity checks (0 disables)")
	videoPath := fs.String("video", "", "source video file, probed via mkvmerge for duration when --duration is unset")
	verbose := fs.Bool("verbose", false, "print repair/ad-purge anomaly counts and the non-adjusting comparator report")
	configPath := fs.String("config", "", "path to a YAML config file overriding the defaults")
	cacheBundle := fs.Bool("bundle", false, "archive this run's artifacts under the candidate's cache directory")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bakasync [flags] <reference.srt> <candidate.srt>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return usageExitCode
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return usageExitCode
	}
	referencePath, candidatePath := fs.Arg(0), fs.Arg(1)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bakasync: %v\n", err)
			return usageExitCode
		}
		cfg = loaded
	}

	reference, err := srtio.ReadFile(referencePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bakasync: %v\n", err)
		return usageExitCode
	}
	candidate, err := srtio.ReadFile(candidatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bakasync: %v\n", err)
		return usageExitCode
	}

	if *videoPath != "" && *duration == 0 {
		if info, probeErr := mkvprobe.Analyze(*videoPath); probeErr != nil {
			fmt.Fprintf(os.Stderr, "bakasync: video probe: %v\n", probeErr)
		} else {
			d := info.DurationSeconds()
			duration = &d
		}
	}

	if *verbose {
		adReg, regErr := config.CompileAdRegistry(cfg.Ad)

		repaired := candidate.Clone()
		repaired.Repair()
		if regErr == nil {
			repaired.DetectAds(adReg.Global, adReg.Limited, adReg.LimitS)
			repaired.PurgeAds()
		}
		fmt.Fprintf(os.Stderr, "bakasync: candidate captions=%d anomalies=%d ads-purged=%d\n",
			len(repaired.Captions), len(repaired.Anomalies), repaired.PurgeAdsCount)

		if regErr != nil {
			fmt.Fprintf(os.Stderr, "bakasync: ad registry: %v\n", regErr)
		} else {
			report := synccompare.Compare(candidate, reference, adReg, *duration)
			fmt.Fprintf(os.Stderr, "bakasync: comparator dev=%.2fs shift=%.1fms rate=%.2f%% pts=%d unmatched(cand=%d ref=%d) short=%v long=%v\n",
				report.Dev, report.ShiftMs, report.RatePercent, report.N,
				report.UnmatchedCandidate, report.UnmatchedReference, report.Short, report.Long)
		}
	}

	outPath := *out
	if outPath == "" {
		outPath = candidatePath
	}

	stem, cacheDir := cacheLayout(candidatePath)
	historyPath := filepath.Join(cacheDir, "history.db")

	hdb, hdbErr := historydb.Open(historyPath)
	var fallbackCaptions *caption.List
	if hdbErr == nil {
		if fb, ferr := hdb.Fallback(stem); ferr == nil {
			fallbackCaptions = fb
		}
	}

	decision, err := syncengine.Analyze(candidate, reference, cfg, outPath, fallbackCaptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bakasync: %v\n", err)
		return usageExitCode
	}

	fmt.Println(decision.Text)

	if hdbErr == nil {
		_ = hdb.Put(historydb.Record{
			VideoStem:     stem,
			CandidateHash: historydb.HashCandidate(candidate),
			RunID:         decision.RunID,
			Variant:       string(decision.Variant),
			DecisionText:  decision.Text,
			CaptionSRT:    decision.Chosen.Serialize(),
		})
		hdb.Close()
	}

	if *cacheBundle {
		if _, err := synccache.Write(cacheDir, synccache.Bundle{
			RunID:         decision.RunID,
			CandidatePath: candidatePath,
			ReferencePath: referencePath,
			OutputPath:    outPath,
			DecisionText:  decision.Text,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "bakasync: session bundle: %v\n", err)
		}
	}

	return 0
}

var langSuffixRe = regexp.MustCompile(`\.[a-zA-Z]{2,3}$`)

// cacheLayout derives the video stem and cache directory from a
// candidate SRT path "{stem}.{lang}.srt", per spec §6.
func cacheLayout(candidatePath string) (stem, cacheDir string) {
	dir := filepath.Dir(candidatePath)
	base := strings.TrimSuffix(filepath.Base(candidatePath), filepath.Ext(candidatePath))
	stem = langSuffixRe.ReplaceAllString(base, "")
	return stem, filepath.Join(dir, stem+".cache")
}
