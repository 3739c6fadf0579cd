package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/quality"
	"github.com/Nomadcxx/jellyname/internal/service"
)

// errRejected makes the command exit non-zero after printing every result.
var errRejected = errors.New("some names were rejected")

func newParseCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "parse <name>...",
		Short: "Parse movie, episode or folder names",
		Long: `Parse names with the movie, episode or directory grammar and print
their fields. The kind is detected unless --kind is given.

Examples:
  jellyname parse Inception.2010.1080p.BluRay.x265-RARBG.mkv
  jellyname parse --kind directory 'Inception.2010[8.8-2.4M-PG-13][1080x2]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := naming.ParseKind(kind)
			if kind != "" && k == naming.KindUnknown {
				return fmt.Errorf("unknown kind %q (movie, episode or directory)", kind)
			}

			var results []service.ParseResult
			failed := false
			p := a.printer(cmd)
			for _, name := range args {
				res, err := a.naming.Parse(name, k)
				if err != nil {
					failed = true
					if !a.jsonOut {
						p.ErrorMsg("%s: %v", name, err)
					}
					continue
				}
				results = append(results, res)
				if !a.jsonOut {
					printParse(a, cmd, res)
				}
			}
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "movie, episode or directory")
	return cmd
}

func printParse(a *app, cmd *cobra.Command, res service.ParseResult) {
	p := a.printer(cmd)
	p.Section(res.Name)
	p.Field("kind", p.Kind(res.Kind))
	if res.CaseFolded {
		p.Field("canonical", p.Warning(res.Canonical))
	} else {
		p.Field("canonical", res.Canonical)
	}

	switch {
	case res.Movie != nil:
		m := res.Movie
		p.Field("title", m.Title)
		p.Field("year", orDash(m.Year))
		printAttributes(a, cmd, m.Attributes)
		if m.Part != "" {
			p.Field("part", m.Part)
		}
	case res.Episode != nil:
		e := res.Episode
		p.Field("title", e.Title)
		p.Field("year", orDash(e.Year))
		episodes := fmt.Sprintf("S%sE%s", e.Season, e.Episode)
		if e.AdditionalEpisode != "" {
			episodes += "E" + e.AdditionalEpisode
		}
		p.Field("episode", episodes)
		if e.EpisodeTitle != "" {
			p.Field("episode title", e.EpisodeTitle)
		}
		printAttributes(a, cmd, e.Attributes)
	case res.Directory != nil:
		d := res.Directory
		p.Field("title", d.Title())
		if o := d.Original(); o != "" {
			p.Field("original", o)
		}
		if t := d.Translated(); t != "" {
			p.Field("translated", t)
		}
		p.Field("year", orDash(d.Year))
		p.Field("rating", fmt.Sprintf("%s (%s votes) %s", orDash(d.AggregateRating), orDash(d.AggregateRatingCount), orDash(d.ContentRating)))
		p.Field("label", orDash(d.FormattedDefinition()))
	}
}

func printAttributes(a *app, cmd *cobra.Command, attrs naming.Attributes) {
	p := a.printer(cmd)
	fields := []struct{ label, value string }{
		{"edition", attrs.Edition},
		{"definition", attrs.Definition},
		{"origin", attrs.Origin},
		{"video", attrs.VideoCodec},
		{"audio", attrs.AudioCodec},
		{"version", attrs.Version},
		{"encoder", attrs.EncoderTool},
		{"subtitles", attrs.SubtitleLanguageTag},
		{"extension", attrs.Extension},
	}
	for _, f := range fields {
		if f.value != "" {
			p.Field(f.label, f.value)
		}
	}
	if attrs.MultipleAudioCount > 0 {
		p.Field("audio tracks", fmt.Sprint(attrs.MultipleAudioCount))
	}
	if attrs.Watermark {
		p.Field("watermark", "yes")
	}
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Classify file names into encoder tiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer(cmd)
			ranking := a.naming.Selector().Ranking()
			n := len(ranking.Order())

			var results []service.Classification
			var rows [][]string
			failed := false
			for _, name := range args {
				c, err := a.naming.Classify(name)
				if err != nil {
					failed = true
					if !a.jsonOut {
						p.ErrorMsg("%s: %v", name, err)
					}
					continue
				}
				results = append(results, c)
				tier := c.Encoder
				if e, err := quality.ParseEncoderType(c.Encoder); err == nil {
					tier = p.Tier(c.Encoder, ranking.Rank(e), n)
				}
				rows = append(rows, []string{c.Name, p.Kind(c.Kind), tier, c.Letter, c.Definition, yesNo(c.GenuineHD)})
			}
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else if len(rows) > 0 {
				p.Table([]string{"File", "Kind", "Tier", "Letter", "Definition", "Genuine HD"}, rows)
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
}

func newRankCmd(a *app) *cobra.Command {
	var (
		kind string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "rank [file]...",
		Short: "Pick the representative version of sibling files",
		Long: `Rank the versions of one title and print the selected tier, definition
and the [ResolutionSource] folder label.

Examples:
  jellyname rank Inception.2010.720p.x264.mkv Inception.2010.1080p.BluRay.x265-RARBG.mkv
  jellyname rank --dir '/media/movies/Inception.2010[8.8-2.4M-PG-13][1080x2]'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := append([]string(nil), args...)
			if dir != "" {
				files, err := videoFiles(dir)
				if err != nil {
					return err
				}
				names = append(names, files...)
			}
			if len(names) == 0 {
				return fmt.Errorf("no files to rank (pass names or --dir)")
			}

			res, _, err := a.naming.Rank(naming.ParseKind(kind), names)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			p := a.printer(cmd)
			rows := make([][]string, 0, len(res.Versions))
			for _, v := range res.Versions {
				rows = append(rows, []string{v.Name, v.Encoder, v.Definition, fmt.Sprint(v.MultipleAudio)})
			}
			p.Table([]string{"File", "Tier", "Definition", "Audio"}, rows)
			p.Section("Selection")
			p.Field("kind", p.Kind(res.Kind))
			p.Field("tier", res.Encoder)
			p.Field("definition", res.Definition)
			p.Field("group size", fmt.Sprint(res.GroupSize))
			p.Field("label", p.Success(res.Label))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "movie or episode (detected from the first name)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "rank every video file in this folder")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <release>...",
		Short: "Suggest canonical names for scene release names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer(cmd)
			var results []service.SuggestResult
			failed := false
			for _, release := range args {
				res, err := a.naming.Suggest(release)
				if err != nil {
					failed = true
					if !a.jsonOut {
						p.ErrorMsg("%s: %v", release, err)
					}
					continue
				}
				results = append(results, res)
				if !a.jsonOut {
					fmt.Fprintf(p.Writer(), "%s\n  %s %s\n", p.Dim(res.Release), p.Success("→"), res.Suggested)
				}
			}
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
}

// videoFiles lists the video files directly inside dir.
func videoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && naming.IsVideoFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
