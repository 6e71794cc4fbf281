package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	downloadOut string
	sendTo      string
	sendUser    string
)

func init() {
	downloadCmd.Flags().StringVar(&downloadOut, "out", "", "Copy the downloaded file into this directory.")
	sendCmd.Flags().StringVar(&sendTo, "to", "", "The kindle address to deliver to.")
	sendCmd.Flags().StringVar(&sendUser, "user", "", "Deliver to the kindle address saved for this user.")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(sendCmd)
}

func copyInto(dir, path string) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := filepath.Join(dir, filepath.Base(path))
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(dst, src)
	if err != nil {
		dst.Close()
		return "", err
	}
	return target, dst.Close()
}

var downloadCmd = &cobra.Command{
	Use:   "download <book id> [--out dir]",
	Short: "Download the epub of a book.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		service, err := app.Retrieval()
		if err != nil {
			return err
		}

		path, err := service.Download(cmd.Context(), id)
		if err != nil {
			return err
		}
		if downloadOut != "" {
			copied, err := copyInto(downloadOut, path)
			if err != nil {
				return fmt.Errorf("copy into %s: %w", downloadOut, err)
			}
			os.RemoveAll(filepath.Dir(path))
			path = copied
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

type kindleEmailLookup interface {
	KindleEmail(ctx context.Context, userId string) (string, bool, error)
}

// resolveRecipient picks the delivery address, in order of priority: an
// explicit address, the address saved for a user, the configured default.
func resolveRecipient(ctx context.Context, to, user string, store kindleEmailLookup, fallback string) (string, error) {
	if to != "" {
		return to, nil
	}
	if user != "" {
		email, ok, err := store.KindleEmail(ctx, user)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("user %q has no kindle address, set one with `bookbridge email set`", user)
		}
		return email, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no kindle address, pass --to or --user or set kindle_email / KINDLE_EMAIL")
}

func sendBook(ctx context.Context, out io.Writer, bookId int, to, user string) error {
	service, err := app.Retrieval()
	if err != nil {
		return err
	}
	sender, err := app.Sender()
	if err != nil {
		return err
	}

	var store kindleEmailLookup
	if user != "" {
		users, closeStore, err := app.Users(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		store = users
	}
	recipient, err := resolveRecipient(ctx, to, user, store, app.Config.KindleEmail)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Downloading book...")
	path, err := service.Download(ctx, bookId)
	if err != nil {
		return err
	}
	defer os.RemoveAll(filepath.Dir(path))

	fmt.Fprintf(out, "Sending %s to %s...\n", filepath.Base(path), recipient)
	err = sender.Send(ctx, path, recipient)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Sent.")
	return nil
}

var sendCmd = &cobra.Command{
	Use:   "send <book id> [--to email] [--user id]",
	Short: "Download a book and mail it to a kindle.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		return sendBook(cmd.Context(), cmd.OutOrStdout(), id, sendTo, sendUser)
	},
}
