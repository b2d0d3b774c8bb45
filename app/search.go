package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/console/gateway"
)

func init() { //nolint: gochecknoinits
	searchCmd.Flags().StringVar(&searchURL, "url", "http://localhost:8080", "Base URL of the web service")
	searchCmd.Flags().StringVar(&searchUser, "user", "", "Login user name")
	searchCmd.Flags().StringVar(&searchPassword, "password", "", "Login password")
	searchCmd.Flags().StringVar(&searchHeadGroup, "head-group", "", "Head group name (fuzzy)")
	searchCmd.Flags().StringVar(&searchWIGroup, "wi-group", "", "WI group name (fuzzy)")
	searchCmd.Flags().StringVar(&searchAccountNo, "account", "", "GFAS account number")
	searchCmd.Flags().StringVar(&searchRM, "rm", "", "Relationship manager (exact)")
	searchCmd.Flags().IntVar(&searchPageNum, "page", 1, "Page number")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", 20, "Page size")

	_ = searchCmd.MarkFlagRequired("user")
	_ = searchCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(searchCmd)
}

var (
	searchURL       string
	searchUser      string
	searchPassword  string
	searchHeadGroup string
	searchWIGroup   string
	searchAccountNo string
	searchRM        string
	searchPageNum   int
	searchPageSize  int

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Search group company mappings from the command line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			client, err := gateway.New(searchURL, 0)
			if err != nil {
				return err
			}

			if err := client.Login(ctx, searchUser, searchPassword); err != nil {
				return err
			}

			list, page, err := client.QueryMappings(ctx, gateway.MappingQuery{
				HeadGroupName: searchHeadGroup,
				WIGroupName:   searchWIGroup,
				GfasAccountNo: searchAccountNo,
				RM:            searchRM,
				PageNum:       searchPageNum,
				PageSize:      searchPageSize,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tACCOUNT\tNAME\tHEAD GROUP\tWI GROUP\tFUND CLASS\tRM")

			for _, m := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.MappingID, m.GfasAccountNo, m.GfasAccountName,
					m.HeadGroupName, m.WIGroupName, m.FundClass, m.RM)
			}

			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("page %d/%d entries, %d total\n", page.PageNum, len(list), page.Total)

			return nil
		},
	}
)
