package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mapforge/cartograph/internal/climate"
	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/raster"
	"github.com/mapforge/cartograph/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Classify climate from elevation, temperature, and precipitation rasters",
	Long:  "Reads four grayscale PNG rasters, reprojects them to a common output grid, classifies every cell, and stores the run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("generate"); err != nil {
			return err
		}

		elevPath, _ := cmd.Flags().GetString("elevation")
		winterPath, _ := cmd.Flags().GetString("winter")
		summerPath, _ := cmd.Flags().GetString("summer")
		precipPath, _ := cmd.Flags().GetString("precip")

		resolution, _ := cmd.Flags().GetInt("resolution")
		if resolution == 0 {
			resolution = cfg.Classify.VerticalResolution
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if workers == 0 {
			workers = cfg.Classify.Workers
		}

		projCfg := cfg.Projection.ToProjection()

		in := climate.Input{
			Planet:             cfg.Planet.ToPlanet(),
			Projection:         projCfg,
			VerticalResolution: resolution,
			Workers:            workers,
		}

		var err error
		if in.Elevation, err = loadField(elevPath, projCfg); err != nil {
			return err
		}
		if in.WinterTemp, err = loadField(winterPath, projCfg); err != nil {
			return err
		}
		if in.SummerTemp, err = loadField(summerPath, projCfg); err != nil {
			return err
		}
		if in.Precipitation, err = loadField(precipPath, projCfg); err != nil {
			return err
		}

		start := time.Now()
		result, err := climate.Generate(in)
		if err != nil {
			return eris.Wrap(err, "generate")
		}
		zap.L().Info("classification complete",
			zap.Int("width", result.Grid.Width),
			zap.Int("height", result.Grid.Height),
			zap.Duration("elapsed", time.Since(start)),
		)

		noSave, _ := cmd.Flags().GetBool("no-save")
		if !noSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			run, err := st.CreateRun(ctx, store.Run{
				VerticalResolution: resolution,
				Projection:         projCfg,
				Summary:            result.Summary,
				Grid:               result.Grid,
			})
			if err != nil {
				return eris.Wrap(err, "generate: save run")
			}
			fmt.Fprintln(os.Stdout, run.ID)
		}

		out, err := yaml.Marshal(result.Summary)
		if err != nil {
			return eris.Wrap(err, "generate: marshal summary")
		}
		if summaryPath, _ := cmd.Flags().GetString("summary"); summaryPath != "" {
			if err := os.WriteFile(summaryPath, out, 0o644); err != nil {
				return eris.Wrapf(err, "generate: write summary %s", summaryPath)
			}
		} else {
			_, _ = os.Stdout.Write(out)
		}
		return nil
	},
}

// loadField reads a grayscale PNG raster and binds it to the projection the
// run uses. Source rasters may be any resolution; only the projection shape
// must match.
func loadField(path string, projCfg projection.Config) (raster.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return raster.Field{}, eris.Wrapf(err, "open raster %s", path)
	}
	defer f.Close() //nolint:errcheck

	g, err := raster.DecodePNG(f)
	if err != nil {
		return raster.Field{}, eris.Wrapf(err, "decode raster %s", path)
	}

	return raster.Field{Grid: g, Config: projCfg}, nil
}

func init() {
	generateCmd.Flags().String("elevation", "", "path to the elevation raster PNG")
	generateCmd.Flags().String("winter", "", "path to the winter temperature raster PNG")
	generateCmd.Flags().String("summer", "", "path to the summer temperature raster PNG")
	generateCmd.Flags().String("precip", "", "path to the precipitation raster PNG")
	generateCmd.Flags().Int("resolution", 0, "output grid height (default from config)")
	generateCmd.Flags().Int("workers", 0, "parallel workers (default NumCPU)")
	generateCmd.Flags().Bool("no-save", false, "print the summary without persisting the run")
	generateCmd.Flags().String("summary", "", "write the YAML summary to a file instead of stdout")

	_ = generateCmd.MarkFlagRequired("elevation")
	_ = generateCmd.MarkFlagRequired("winter")
	_ = generateCmd.MarkFlagRequired("summer")
	_ = generateCmd.MarkFlagRequired("precip")

	rootCmd.AddCommand(generateCmd)
}
