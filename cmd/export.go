package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapforge/cartograph/internal/export"
	"github.com/mapforge/cartograph/internal/region"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run as GeoJSON or a shapefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		windowSpec, _ := cmd.Flags().GetString("window")

		win, err := parseWindow(windowSpec)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if run.Grid == nil {
			return eris.Errorf("export: run %s has no grid payload", run.ID)
		}

		switch format {
		case "geojson":
			f, err := os.Create(outPath)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", outPath)
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteGeoJSON(f, run.Grid, run.Projection); err != nil {
				return err
			}
		case "shp":
			if err := export.WriteShapefile(outPath, run.Grid, run.Projection, win); err != nil {
				return err
			}
		default:
			return eris.Errorf("export: unsupported format %q (use geojson or shp)", format)
		}

		zap.L().Info("run exported",
			zap.String("run", run.ID),
			zap.String("format", format),
			zap.String("path", outPath),
		)
		return nil
	},
}

// parseWindow decodes an "x0,y0,width,height" cell window. An empty spec
// means the full grid.
func parseWindow(spec string) (*region.Window, error) {
	if spec == "" {
		return nil, nil
	}
	var w region.Window
	if _, err := fmt.Sscanf(spec, "%d,%d,%d,%d", &w.X0, &w.Y0, &w.Width, &w.Height); err != nil {
		return nil, eris.Wrapf(err, "export: parse window %q", spec)
	}
	return &w, nil
}

func init() {
	exportCmd.Flags().String("format", "geojson", "output format: geojson or shp")
	exportCmd.Flags().String("out", "", "output file path")
	exportCmd.Flags().String("window", "", "restrict shapefile output to cells x0,y0,width,height")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}
