package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/covweb/internal/vanlist"
	"github.com/me/covweb/pkg/model"
)

// termView writes listing regions to a terminal as they change.
type termView struct {
	out io.Writer
}

func (v termView) ShowSection(string) {}

func (v termView) SetList(markup string) {
	fmt.Fprint(v.out, markup)
}

func (v termView) SetPagination(markup string) {
	if markup != "" {
		fmt.Fprint(v.out, "\n"+markup)
	}
}

// fixedControls is the selection given on the command line.
type fixedControls struct {
	sort    string
	perPage int
}

func (c fixedControls) SortKey() string { return c.sort }
func (c fixedControls) PageSize() int   { return c.perPage }

func newVansCmd() *cobra.Command {
	var (
		page        int
		perPage     int
		sort        string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "vans",
		Short: "List inspected vans",
		Long: `List inspected vans one page at a time.

With --interactive, commands are read from standard input after each page:
  n          next page
  p          previous page
  <number>   go to that page
  r          reload the current page
  q          quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctrl := vanlist.New(api, fixedControls{sort: sort, perPage: perPage}, termView{out: out},
				vanlist.WithRenderer(vanlist.TextRenderer{}),
				vanlist.WithLogger(logger),
				vanlist.WithStartPage(page),
			)

			err := ctrl.Open(cmd.Context())
			if !interactive {
				return err
			}
			return browse(cmd, ctrl)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().IntVar(&perPage, "per-page", model.DefaultPerPage, "Inspections per page")
	cmd.Flags().StringVar(&sort, "sort", model.SortCreatedAt, "Sort key (created_at, date, van_date, van_inspector_date, date_van, event_date)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Page through results interactively")

	return cmd
}

// browse reads paging commands until q or end of input.
func browse(cmd *cobra.Command, ctrl *vanlist.Controller) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		st := ctrl.State()
		fmt.Fprintf(out, "\nPage %d of %d [n]ext [p]rev <number> [r]eload [q]uit: ", st.CurrentPage, max(st.TotalPages, 1))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fmt.Fprintln(out)

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		var err error
		switch input {
		case "q", "quit", "exit":
			return nil
		case "n", "next":
			err = ctrl.GoToPage(cmd.Context(), st.CurrentPage+1)
		case "p", "prev", "previous":
			err = ctrl.GoToPage(cmd.Context(), st.CurrentPage-1)
		case "r", "reload", "":
			err = ctrl.Refresh(cmd.Context())
		default:
			n, convErr := strconv.Atoi(input)
			if convErr != nil {
				fmt.Fprintf(out, "Unknown command %q.\n", input)
				continue
			}
			err = ctrl.GoToPage(cmd.Context(), n)
		}

		switch {
		case errors.Is(err, vanlist.ErrPageOutOfRange):
			fmt.Fprintln(out, "No such page.")
		case err != nil:
			// The listing already shows the failure.
			logger.Debug("page load failed", "error", err)
		}
	}
}
