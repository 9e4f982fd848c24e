package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"feastiq/internal/domain"
	"feastiq/internal/repository/gormrepo"
	"feastiq/internal/service/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all reservations as CSV",
		Long:  `Write all reservations in insertion order, in the same format as /admin/export.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, stdout io.Writer, output string) (err error) {
	a, err := c.bootstrap("stderr")
	if err != nil {
		return err
	}
	defer a.close()

	rs, err := gormrepo.NewReservationRepository(a.db).ListReservations(ctx, domain.OrderInserted)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}

	w := stdout
	if output != "" && output != "-" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if err := export.WriteCSV(w, rs); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	a.logger.Info("reservations exported", zap.Int("count", len(rs)), zap.String("output", output))
	return nil
}
