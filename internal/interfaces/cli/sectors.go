package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ben-daghir/hercap/internal/domain/sector"
)

type sectorList []sector.CategoryScore

func (l sectorList) TableTitle() string { return "Sectors by weighted score" }

func (l sectorList) TableHeaders() []string { return []string{"RANK", "CATEGORY", "SCORE"} }

func (l sectorList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{strconv.Itoa(i + 1), s.Name, strconv.FormatFloat(s.Score, 'f', 1, 64)}
	}
	return rows
}

// NewSectorsCmd creates the sectors command.
func NewSectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "Rank portfolio categories by weighted company count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.commandContext(cmd)
			defer cancel()

			ps, err := cliCtx.openPortfolio(ctx)
			defer ps.Close()
			if err != nil {
				return err
			}
			scores, err := ps.service.Sectors(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, sectorList(scores))
		},
	}
}

//Personal.AI order the ending
