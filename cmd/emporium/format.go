package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/terra-clan/unicorn-emporium/internal/cart"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

var printer = message.NewPrinter(language.English)

// formatPrice renders a whole-unit price with thousands grouping, e.g. $12,999
func formatPrice(amount int64) string {
	return printer.Sprintf("$%d", amount)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProducts(w io.Writer, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No unicorns found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, formatPrice(p.Price))
	}
	tw.Flush()
}

func printProduct(w io.Writer, p models.Product) {
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Category: %s\n", p.Category)
	fmt.Fprintf(w, "Price:    %s\n", formatPrice(p.Price))
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	if len(p.Features) > 0 {
		fmt.Fprintln(w)
		for _, f := range p.Features {
			fmt.Fprintf(w, "  * %s\n", f)
		}
	}
}

func printCart(w io.Writer, lines []models.CartLine) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Quantity, formatPrice(l.Price), formatPrice(l.Subtotal()))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", formatPrice(cart.Total(lines)))
}

// cartSummary is the one-line badge shown after a cart change
func cartSummary(snap cart.Snapshot) string {
	items := 0
	for _, l := range snap.Lines {
		items += l.Quantity
	}
	noun := "items"
	if items == 1 {
		noun = "item"
	}
	return fmt.Sprintf("Cart: %d %s, %s", items, noun, formatPrice(cart.Total(snap.Lines)))
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
