// Package repl provides the interactive submission loop: one order per line,
// trades and unfilled outcomes printed as they happen.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"matchd/internal/book"
	"matchd/internal/engine"
)

// Request is one parsed submission line.
type Request struct {
	Kind     book.Kind
	Side     book.Side
	Price    int64 // cents; 0 for market orders
	Quantity int64
}

var errUsage = errors.New(`expected: <limit|market> <buy|sell> <price|-> <quantity>`)

// parseLine parses "limit buy 101.50 2" or "market sell - 5". Limit prices
// are decimal dollars; market orders use "-" in the price slot.
func parseLine(line string) (Request, error) {
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return Request{}, errUsage
	}

	kind, err := book.ParseKind(strings.ToLower(parts[0]))
	if err != nil {
		return Request{}, err
	}
	side, err := book.ParseSide(strings.ToLower(parts[1]))
	if err != nil {
		return Request{}, err
	}

	var price int64
	if kind == book.Limit {
		price, err = ParsePrice(parts[2])
		if err != nil {
			return Request{}, err
		}
	} else if parts[2] != "-" {
		return Request{}, errors.New(`market orders take "-" in the price slot`)
	}

	qty, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || qty <= 0 {
		return Request{}, errors.New("quantity must be a positive integer")
	}

	return Request{Kind: kind, Side: side, Price: price, Quantity: qty}, nil
}

// ParsePrice converts a decimal dollar amount ("101.5") to cents.
func ParsePrice(v string) (int64, error) {
	whole, frac, _ := strings.Cut(v, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("invalid price %q", v)
	}
	cents := dollars * 100
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("price %q has sub-cent precision", v)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q", v)
		}
		cents += f
	}
	return cents, nil
}

// FormatPrice renders cents as decimal dollars.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// Run reads submission lines from in until EOF, feeding them to the engine.
// A bad line reports an error and keeps the loop alive.
func Run(e *engine.Engine, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "matchd interactive mode")
	fmt.Fprintln(out, "format: <limit|market> <buy|sell> <price|-> <quantity>")
	fmt.Fprintln(out, `example: limit buy 101.50 2   or   market sell - 5`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		req, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		res, err := e.Submit(req.Kind, req.Side, req.Price, req.Quantity)
		if err != nil {
			fmt.Fprintf(out, "rejected: %v\n", err)
			continue
		}

		for _, t := range res.Trades {
			fmt.Fprintf(out, "trade: %s %s @ %s for %d\n",
				t.TakerSide, t.TakerKind, FormatPrice(t.Price), t.Quantity)
		}
		if res.Unfilled > 0 {
			fmt.Fprintf(out, "market order not fully filled (%d remaining)\n", res.Unfilled)
		}
		if res.Rested {
			fmt.Fprintf(out, "order %d resting\n", res.OrderID)
		}
	}
	return scanner.Err()
}
