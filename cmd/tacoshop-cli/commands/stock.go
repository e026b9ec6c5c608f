package commands

import (
	"fmt"
	"sort"

	"tacorder-backend/lib/scrapers/tacoshop"
	"tacorder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stockCmd)
}

func availabilityLabel(a tacoshop.Availability) string {
	switch a {
	case tacoshop.LowStock:
		return "low"
	case tacoshop.OutOfStock:
		return "out"
	default:
		return "ok"
	}
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Fetches and prints current ingredient availability.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := createService()

		stock, err := service.Stock(ctx, *sessionId)
		if err != nil {
			serviceutil.Fatal("failed to fetch stock", err)
		}

		categories := make([]string, 0, len(stock))
		for category := range stock {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			codes := make([]string, 0, len(stock[category]))
			for code := range stock[category] {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			fmt.Println(category)
			for _, code := range codes {
				fmt.Printf("  %-24s %s\n", code, availabilityLabel(stock[category][code]))
			}
		}
	},
}
