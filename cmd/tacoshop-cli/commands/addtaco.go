package commands

import (
	"log/slog"

	"tacorder-backend/lib/scrapers/tacoshop"
	"tacorder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	tacoSize       *string
	tacoMeats      *[]string
	tacoSauces     *[]string
	tacoGarnitures *[]string
	tacoNote       *string
)

func init() {
	tacoSize = addTacoCmd.Flags().String("size", "m", "The taco size code (m, l, l_mixte, xl, xxl, geant).")
	tacoMeats = addTacoCmd.Flags().StringSlice("meat", nil, "A meat id, repeatable.")
	tacoSauces = addTacoCmd.Flags().StringSlice("sauce", nil, "A sauce id, repeatable.")
	tacoGarnitures = addTacoCmd.Flags().StringSlice("garniture", nil, "A garniture id, repeatable.")
	tacoNote = addTacoCmd.Flags().String("note", "", "A free-form note attached to the taco.")
	rootCmd.AddCommand(addTacoCmd)
}

var addTacoCmd = &cobra.Command{
	Use:   "add-taco [--size <code>] [--meat <id>]... [--sauce <id>]... [--garniture <id>]...",
	Short: "Adds a taco to the upstream cart.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := createService()

		taco := tacoshop.Taco{
			Size: tacoshop.Size(*tacoSize),
			Note: *tacoNote,
		}
		for _, id := range *tacoMeats {
			taco.Meats = append(taco.Meats, tacoshop.Meat{Id: id, Quantity: 1})
		}
		for _, id := range *tacoSauces {
			taco.Sauces = append(taco.Sauces, tacoshop.Sauce{Id: id})
		}
		for _, id := range *tacoGarnitures {
			taco.Garnitures = append(taco.Garnitures, tacoshop.Garniture{Id: id})
		}

		err := service.AddTaco(ctx, *sessionId, taco)
		if err != nil {
			serviceutil.Fatal("failed to add taco", err)
		}
		slog.Info("taco added", "size", *tacoSize, "meats", len(taco.Meats))
	},
}
