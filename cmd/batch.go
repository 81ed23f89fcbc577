package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/apex/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/premtools/unpack/internal/rescache"
)

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("output-dir", "d", ".", "Directory to write unpacked resources to")
	batchCmd.Flags().String("suffix", ".bin", "Suffix appended to unpacked file names")
	batchCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Number of files to unpack in parallel")
	batchCmd.Flags().Int("cache-size", 256, "Number of unpacked resources to keep for duplicate inputs")
	batchCmd.MarkFlagDirname("output-dir")
	viper.BindPFlag("batch.output-dir", batchCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("batch.suffix", batchCmd.Flags().Lookup("suffix"))
	viper.BindPFlag("batch.jobs", batchCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("batch.cache-size", batchCmd.Flags().Lookup("cache-size"))
}

// batchCmd unpacks every file matching the given patterns
var batchCmd = &cobra.Command{
	Use:   "batch PATTERN...",
	Short: "Unpack many resources at once",
	Long: `Unpack every file matching PATTERN (doublestar syntax, e.g. 'data/**/*.CMP').
Output files keep their path relative to the pattern's fixed prefix;
inputs that would land on the same output file are rejected.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := expandPatterns(args)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return fmt.Errorf("no files match %v", args)
		}

		return unpackBatch(cmd.Context(), jobs, batchOptions{
			OutputDir: viper.GetString("batch.output-dir"),
			Suffix:    viper.GetString("batch.suffix"),
			Jobs:      viper.GetInt("batch.jobs"),
			CacheSize: viper.GetInt("batch.cache-size"),
		})
	},
}

var errOutputClash = errors.New("output path clash")

type batchOptions struct {
	OutputDir string
	Suffix    string
	Jobs      int
	CacheSize int
}

// batchJob is one matched input and its path relative to the pattern base.
type batchJob struct {
	Path string
	Rel  string
}

// expandPatterns matches patterns and fails if two inputs would be written
// to the same output path.
func expandPatterns(patterns []string) ([]batchJob, error) {
	var jobs []batchJob
	seen := make(map[string]bool)
	claimed := make(map[string]string) // rel -> input
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			log.Warnf("No files match %s", pattern)
		}

		base, _ := doublestar.SplitPattern(pattern)
		base = filepath.FromSlash(base)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			rel, err := filepath.Rel(base, m)
			if err != nil {
				rel = filepath.Base(m)
			}
			if prev, ok := claimed[rel]; ok {
				return nil, fmt.Errorf("%s and %s would both unpack to %s: %w", prev, m, rel, errOutputClash)
			}
			claimed[rel] = m
			jobs = append(jobs, batchJob{Path: m, Rel: rel})
		}
	}
	return jobs, nil
}

func unpackBatch(ctx context.Context, jobs []batchJob, opts batchOptions) error {
	cache, err := rescache.New(opts.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return unpackJob(cache, job, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	hits, _ := cache.Stats()
	log.WithFields(log.Fields{
		"files":      len(jobs),
		"duplicates": hits,
		"output-dir": opts.OutputDir,
	}).Info("Unpacked resources")
	return nil
}

func unpackJob(cache *rescache.Cache, job batchJob, opts batchOptions) error {
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", job.Path, err)
	}
	out, hit, err := cache.Decompress(data)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", job.Path, err)
	}

	dst := filepath.Join(opts.OutputDir, job.Rel+opts.Suffix)
	if err := writeOutput(dst, out); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"input":  job.Path,
		"output": dst,
		"size":   humanize.Bytes(uint64(len(out))),
		"cached": hit,
	}).Debug("Unpacked")
	return nil
}
