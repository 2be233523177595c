package cli

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// supplyFlags holds the per-field flags of add and edit.
type supplyFlags struct {
	code, description, category, uom, storeName, expiry, image string
	store                                                      int
}

func (f *supplyFlags) register(fs *pflag.FlagSet, codeFlag string) {
	fs.StringVar(&f.code, codeFlag, "", "product code")
	fs.StringVarP(&f.description, "description", "d", "", "product description")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.uom, "uom", "", "unit of measure")
	fs.IntVar(&f.store, "store-number", 0, "store (facility) number")
	fs.StringVar(&f.storeName, "store-name", "", "store name")
	fs.StringVar(&f.expiry, "expiry", "", "expiry date, YYYY-MM-DD")
	fs.StringVar(&f.image, "image-url", "", "image URL")
}

// apply copies the flags that were set into s.
func (f *supplyFlags) apply(s *models.Supply, fs *pflag.FlagSet, codeFlag string) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set(codeFlag, &s.ProductCode, f.code)
	set("description", &s.ProductDescription, f.description)
	set("category", &s.Category, f.category)
	set("uom", &s.UnitOfMeasure, f.uom)
	set("store-name", &s.StoreName, f.storeName)
	set("expiry", &s.ExpiryDate, f.expiry)
	set("image-url", &s.ImageURL, f.image)
	if fs.Changed("store-number") {
		s.Store = f.store
	}
}

func newAddCommand(s *session) *cobra.Command {
	var f supplyFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a supply; missing required fields are prompted for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())

			item := models.Supply{Category: "GENERAL", UnitOfMeasure: "EACH"}
			f.apply(&item, cmd.Flags(), "code")

			var err error
			if item.ProductCode == "" {
				if item.ProductCode, err = GetSimpleText(a.reader, "Product code", a.out); err != nil {
					return err
				}
			}
			if item.ProductDescription == "" {
				if item.ProductDescription, err = GetSimpleText(a.reader, "Description", a.out); err != nil {
					return err
				}
			}

			stored, err := a.supplies.Create(cmd.Context(), item, a.config.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s.\n", stored.ProductCode)
			return nil
		},
	}
	f.register(cmd.Flags(), "code")
	return cmd
}

func newEditCommand(s *session) *cobra.Command {
	var (
		f           supplyFlags
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "edit <code>",
		Short: "Change a supply; --new-code renames it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())

			item, err := a.supplies.Get(args[0])
			if err != nil {
				return err
			}
			f.apply(&item, cmd.Flags(), "new-code")
			if interactive {
				if err := promptSupply(a, &item); err != nil {
					return err
				}
			}

			stored, err := a.supplies.Update(cmd.Context(), args[0], item, a.config.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s (version %d).\n", stored.ProductCode, stored.Meta.Version)
			return nil
		},
	}
	f.register(cmd.Flags(), "new-code")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	return cmd
}

func promptSupply(a *App, item *models.Supply) error {
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Product code", &item.ProductCode},
		{"Description", &item.ProductDescription},
		{"Category", &item.Category},
		{"Unit of measure", &item.UnitOfMeasure},
		{"Store name", &item.StoreName},
		{"Expiry date (YYYY-MM-DD)", &item.ExpiryDate},
	}
	for _, fl := range fields {
		v, err := GetTextWithDefault(a.reader, fl.prompt, *fl.dst, a.out)
		if err != nil {
			return err
		}
		*fl.dst = v
	}

	v, err := GetTextWithDefault(a.reader, "Store number", strconv.Itoa(item.Store), a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("store number: %w", err)
	}
	item.Store = n
	return nil
}

func newDeleteCommand(s *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <code>",
		Aliases: []string{"rm"},
		Short:   "Delete a supply",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			if !yes {
				ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s?", args[0]), a.out)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			if err := a.supplies.Delete(cmd.Context(), args[0], a.config.UserID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newImageCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "image <code> <file>",
		Short: "Upload a picture for a supply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			if a.images == nil {
				return fmt.Errorf("the %s store backend does not support images", a.config.StoreBackend)
			}
			a.refresh(cmd.Context())
			url, err := a.images.Attach(cmd.Context(), args[0], args[1], a.config.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Image stored at %s\n", url)
			return nil
		},
	}
}
