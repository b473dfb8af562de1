package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastgen/internal/app"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/pkg/textextract"
)

type jobFlags struct {
	topicFile string
	scene     string
	duration  int
	voices    []string
	names     []string
	welcome   string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.topicFile, "topic-file", "", "background material ("+strings.Join(textextract.SupportedTypes(), ", ")+")")
	scenes := make([]string, 0, len(podcast.Scenes()))
	for _, s := range podcast.Scenes() {
		scenes = append(scenes, string(s))
	}
	cmd.Flags().StringVarP(&f.scene, "scene", "s", string(podcast.SceneSolo), "scene: "+strings.Join(scenes, ", "))
	cmd.Flags().IntVarP(&f.duration, "duration", "d", 5, "target length in minutes (1-30)")
	cmd.Flags().StringSliceVar(&f.voices, "voices", nil, "voice IDs, one per speaker")
	cmd.Flags().StringSliceVar(&f.names, "names", nil, "speaker display names")
	cmd.Flags().StringVar(&f.welcome, "welcome", "", "greeting spoken before the dialogue")
}

// job builds the request from args and flags. The brief is the extracted
// topic file, if any; its name stands in for a missing topic.
func (f *jobFlags) job(args []string) (podcast.Job, string, error) {
	job := podcast.Job{
		Topic:        strings.TrimSpace(strings.Join(args, " ")),
		Scene:        podcast.Scene(strings.ToLower(f.scene)),
		Duration:     f.duration,
		Voices:       f.voices,
		SpeakerNames: f.names,
		Welcome:      f.welcome,
	}
	var brief string
	if f.topicFile != "" {
		text, err := textextract.ExtractFile(f.topicFile)
		if err != nil {
			return job, "", err
		}
		brief = text.Content
		if job.Topic == "" {
			job.Topic = strings.TrimSuffix(filepath.Base(f.topicFile), filepath.Ext(f.topicFile))
		}
	}
	return job, brief, nil
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		flags     jobFlags
		script    string
		noMusic   bool
		musicFile string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate one podcast",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, brief, err := flags.job(args)
			if err != nil {
				return err
			}
			job.NoMusic = noMusic
			job.OutputPath = output
			if script != "" {
				turns, err := podcast.LoadScriptFile(script)
				if err != nil {
					return err
				}
				job.Script = turns
			}
			if err := job.Validate(); err != nil {
				return err
			}
			if err := root.cfg.Validate(); err != nil {
				return err
			}

			pipeline, err := app.BuildPipeline(root.cfg, app.NewMiniMax(root.cfg.MiniMax), nil, app.Options{
				NoMusic:   noMusic,
				MusicFile: musicFile,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			printInfo("Generating %s podcast on %q (%d min, %s)", job.Scene, job.Topic, job.Duration,
				podcast.FormatEstimate(podcast.EstimateGenerationTime(job.Duration)))
			art, err := pipeline.Generate(ctx, job, podcast.WithBrief(brief), podcast.WithProgress(printProgress()))
			if art != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderArtifact(art))
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&script, "script", "", "pre-authored dialogue (JSON or YAML); skips generation")
	cmd.Flags().BoolVar(&noMusic, "no-music", false, "skip background music")
	cmd.Flags().StringVar(&musicFile, "music-file", "", "use this audio file as background music")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output MP3 path")
	return cmd
}

func newScriptCmd(root *rootOptions) *cobra.Command {
	var (
		flags  jobFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "script [topic]",
		Short: "Generate only the dialogue and write it as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, brief, err := flags.job(args)
			if err != nil {
				return err
			}
			if err := job.Validate(); err != nil {
				return err
			}

			pipeline, err := app.BuildPipeline(root.cfg, app.NewMiniMax(root.cfg.MiniMax), nil, app.Options{NoMusic: true})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			script, err := pipeline.Generator().Generate(ctx, job, brief)
			if err != nil {
				return err
			}
			if output == "" {
				output = "script_" + podcast.Slug(job.Topic, 40) + ".json"
			}
			if err := podcast.WriteScriptFile(output, script.Turns()); err != nil {
				return err
			}
			if script.Source == podcast.SourceFallback {
				printWarn("Model output was unusable (%s); wrote the fallback script", script.FallbackReason)
			}
			printSuccess("Wrote %d turns to %s (source: %s)", len(script.Segments), output, script.Source)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "script path (.json, .yaml)")
	return cmd
}
