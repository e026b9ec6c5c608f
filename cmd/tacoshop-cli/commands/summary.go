package commands

import (
	"fmt"
	"strings"

	"tacorder-backend/lib/scrapers/tacoshop"
	"tacorder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func printItems(header string, items []tacoshop.SummaryItem) {
	if len(items) == 0 {
		return
	}
	fmt.Println(header)
	for _, item := range items {
		fmt.Printf("  %d x %s - %.2f CHF\n", item.Quantity, item.Name, item.Price)
	}
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetches and prints the current order summary.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := createService()

		summary, err := service.OrderSummary(ctx, *sessionId)
		if err != nil {
			serviceutil.Fatal("failed to fetch order summary", err)
		}

		if len(summary.Tacos) > 0 {
			fmt.Println("Tacos")
			for _, taco := range summary.Tacos {
				fmt.Printf("  %d x %s - %.2f CHF\n", taco.Quantity, taco.Size, taco.Price)
				if len(taco.Meats) > 0 {
					fmt.Printf("    meats: %s\n", strings.Join(taco.Meats, ", "))
				}
				if len(taco.Sauces) > 0 {
					fmt.Printf("    sauces: %s\n", strings.Join(taco.Sauces, ", "))
				}
			}
		}
		printItems("Extras", summary.Extras)
		printItems("Drinks", summary.Drinks)
		printItems("Desserts", summary.Desserts)

		fmt.Printf("cart total:   %.2f CHF\n", summary.CartTotal)
		fmt.Printf("delivery fee: %.2f CHF\n", summary.DeliveryFee)
		fmt.Printf("total:        %.2f CHF\n", summary.TotalAmount)
	},
}
