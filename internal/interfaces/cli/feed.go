package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	domain "github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/pkg/errors"
)

type feedOptions struct {
	stage    string
	category string
	name     string
	sort     bool
}

// companyList prints a page of companies.
type companyList struct {
	*domain.Page
}

func (l companyList) TableTitle() string {
	return "Portfolio (" + strconv.Itoa(l.Total) + " companies)"
}

func (l companyList) TableHeaders() []string {
	return []string{"ID", "NAME", "STAGE", "LOCATION", "CATEGORIES"}
}

func (l companyList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Items))
	for _, c := range l.Items {
		refs := c.Categories()
		names := make([]string, len(refs))
		for i, ref := range refs {
			names[i] = ref.Name
		}
		rows = append(rows, []string{
			strconv.Itoa(c.ID), c.Name, string(c.Stage), c.Location, strings.Join(names, ", "),
		})
	}
	return rows
}

// NewFeedCmd creates the feed command.
func NewFeedCmd() *cobra.Command {
	opts := &feedOptions{}
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Load the portfolio feed and list its companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.stage, "stage", "", "only companies at this stage (Angel, Early, Growth, Public)")
	cmd.Flags().StringVar(&opts.category, "category", "", "only companies in this category")
	cmd.Flags().StringVar(&opts.name, "name", "", "only companies whose name contains this text")
	cmd.Flags().BoolVar(&opts.sort, "sort", false, "sort by name")
	return cmd
}

func runFeed(cmd *cobra.Command, opts *feedOptions) error {
	stage, err := parseStageFlag(opts.stage)
	if err != nil {
		return err
	}
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

	page, err := ps.service.ListCompanies(ctx, &portfolioapp.ListInput{
		Stage:      stage,
		Category:   opts.category,
		Name:       opts.name,
		SortByName: opts.sort,
	})
	if err != nil {
		return err
	}
	return PrintResult(cmd, companyList{page})
}

// parseStageFlag accepts a stage name in any case.  Unlike feed parsing,
// unknown text is an error rather than Early.
func parseStageFlag(s string) (domain.Stage, error) {
	if s == "" {
		return "", nil
	}
	for _, st := range domain.Stages {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", errors.InvalidParam("unknown stage").WithDetail(s)
}

//Personal.AI order the ending
