package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/services"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Work with products",
}

var (
	listSort string
	form     services.ProductForm
	restockN int64
	yes      bool
)

func init() {
	productListCmd.Flags().StringVar(&listSort, "sort", "", `ORDER BY expression, e.g. "quantity DESC"`)

	for _, c := range []*cobra.Command{productAddCmd, productEditCmd} {
		c.Flags().StringVar(&form.Name, "name", "", "product name")
		c.Flags().StringVar(&form.Price, "price", "", "price in the smallest currency unit")
		c.Flags().StringVar(&form.Quantity, "quantity", "", "quantity in stock")
		c.Flags().StringVar(&form.SupplierName, "supplier", "", "supplier name")
		c.Flags().StringVar(&form.SupplierPhone, "phone", "", "supplier phone")
	}

	productRestockCmd.Flags().Int64VarP(&restockN, "count", "n", 1, "units to add")
	productDeleteAllCmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every product")

	productCmd.AddCommand(
		productListCmd,
		productShowCmd,
		productAddCmd,
		productEditCmd,
		productSellCmd,
		productRestockCmd,
		productDeleteCmd,
		productDeleteAllCmd,
		productTypeCmd,
	)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}

func printProducts(w io.Writer, products []models.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQUANTITY\tSUPPLIER\tPHONE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.Name, services.FormatPrice(p.Price), p.Quantity, p.SupplierName, p.SupplierPhone)
	}
	return tw.Flush()
}

// inventory product list
var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		products, err := svc.Products(cmd.Context(), listSort)
		if err != nil {
			return err
		}
		return printProducts(cmd.OutOrStdout(), products)
	},
}

// inventory product show <id>
var productShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		p, err := svc.Product(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printProducts(cmd.OutOrStdout(), []models.Product{p})
	},
}

// inventory product add --name ... --price ... --quantity ... --supplier ... --phone ...
var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		uri, err := svc.AddProduct(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), uri)
		return nil
	},
}

// inventory product edit <id> [--name ...] [--price ...] ...
//
// Flags left unset keep the stored value.
var productEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		current, err := svc.Product(cmd.Context(), id)
		if err != nil {
			return err
		}

		next := services.FormFromProduct(current)
		flags := cmd.Flags()
		if flags.Changed("name") {
			next.Name = form.Name
		}
		if flags.Changed("price") {
			next.Price = form.Price
		}
		if flags.Changed("quantity") {
			next.Quantity = form.Quantity
		}
		if flags.Changed("supplier") {
			next.SupplierName = form.SupplierName
		}
		if flags.Changed("phone") {
			next.SupplierPhone = form.SupplierPhone
		}

		changed, err := svc.EditProduct(cmd.Context(), id, next)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to update.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %v.\n", changed)
		return nil
	},
}

// inventory product sell <id>
var productSellCmd = &cobra.Command{
	Use:   "sell <id>",
	Short: "Sell one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		left, err := svc.Sell(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sold. %d left.\n", left)
		return nil
	},
}

// inventory product restock <id> [-n count]
var productRestockCmd = &cobra.Command{
	Use:   "restock <id>",
	Short: "Add units to a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		total, err := svc.Restock(cmd.Context(), id, restockN)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restocked. %d in stock.\n", total)
		return nil
	},
}

// inventory product delete <id>
var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		return svc.DeleteProduct(cmd.Context(), id)
	},
}

// inventory product delete-all --yes
var productDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("refusing to delete all products without --yes")
		}
		svc, _, err := bootService()
		if err != nil {
			return err
		}
		n, err := svc.DeleteAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d product(s).\n", n)
		return nil
	},
}

// inventory product type <locator>
var productTypeCmd = &cobra.Command{
	Use:   "type <locator>",
	Short: "Print the content type of a locator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := bootStore()
		if err != nil {
			return err
		}
		typ, err := st.Type(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), typ)
		return nil
	},
}
