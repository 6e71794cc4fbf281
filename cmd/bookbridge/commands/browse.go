package commands

import (
	"bookbridge/internal/components/chrono"
	"bookbridge/internal/retrieval"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	browseCmd.Flags().StringVar(&sendTo, "to", "", "The kindle address books are sent to.")
	browseCmd.Flags().StringVar(&sendUser, "user", "", "Send books to the kindle address saved for this user.")
	rootCmd.AddCommand(browseCmd)
}

const browseHelp = `commands:
  n            next page
  p            previous page
  <number>     open the entry with that number
  i <book id>  show a book
  s <book id>  send a book to the kindle
  q            quit`

// translateInput turns a line typed while browsing into the callback payload
// it stands for, an empty payload with no error means quit.
func translateInput(line string, page retrieval.Page) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return retrieval.NoopCallback, nil
	}

	switch fields[0] {
	case "q":
		return "", nil
	case "n":
		return retrieval.EncodePage(page.SessionId, page.Number+1), nil
	case "p":
		return retrieval.EncodePage(page.SessionId, page.Number-1), nil
	case "i", "s":
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: %s <book id>", fields[0])
		}
		id, err := parseId(fields[1])
		if err != nil {
			return "", err
		}
		if fields[0] == "i" {
			return retrieval.EncodeInfo(id), nil
		}
		return retrieval.EncodeSend(id), nil
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return "", fmt.Errorf("unknown command %q", fields[0])
	}
	return retrieval.EncodeItem(page.SessionId, page.Number, n-1), nil
}

type browser struct {
	service retrieval.Service
	out     io.Writer
	page    retrieval.Page
	send    func(ctx context.Context, bookId int) error
}

// handle applies one callback, paging callbacks replace the current page.
func (b *browser) handle(ctx context.Context, callback retrieval.Callback) error {
	switch callback.Kind {
	case retrieval.CallbackNoop:
		return nil
	case retrieval.CallbackPage:
		page, err := b.service.Page(ctx, callback.SessionId, callback.Page)
		if errors.Is(err, retrieval.ErrOutOfRange) {
			fmt.Fprintln(b.out, "No such page.")
			return nil
		}
		if err != nil {
			return err
		}
		b.page = page
		renderPage(b.out, page)
	case retrieval.CallbackItem:
		item, err := b.service.Item(ctx, callback.SessionId, callback.Page, callback.Index)
		if errors.Is(err, retrieval.ErrOutOfRange) {
			fmt.Fprintln(b.out, "No such entry.")
			return nil
		}
		if err != nil {
			return err
		}
		if item.Kind == retrieval.ItemSequence {
			page, err := b.service.Start(ctx, retrieval.SequenceQuery(item.Sequence.SequenceId))
			if err != nil {
				return err
			}
			if page.TotalItems > 0 {
				b.page = page
			}
			renderPage(b.out, page)
			return nil
		}
		return b.handle(ctx, retrieval.Callback{Kind: retrieval.CallbackInfo, BookId: item.Book.Id})
	case retrieval.CallbackInfo:
		info, err := b.service.Detail(ctx, callback.BookId)
		if err != nil {
			return err
		}
		renderDetail(b.out, info)
		fmt.Fprintf(b.out, "\ntype `s %d` to send it to your kindle\n", info.Summary.Id)
	case retrieval.CallbackSend:
		return b.send(ctx, callback.BookId)
	}
	return nil
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := translateInput(scanner.Text(), b.page)
		if err != nil {
			fmt.Fprintln(b.out, err)
			fmt.Fprintln(b.out, browseHelp)
			continue
		}
		if payload == "" {
			return nil
		}
		callback, err := retrieval.ParseCallback(payload)
		if err != nil {
			fmt.Fprintln(b.out, err)
			continue
		}

		err = b.handle(ctx, callback)
		if errors.Is(err, retrieval.ErrSessionNotFound) {
			fmt.Fprintln(b.out, "This search has expired, start a new one.")
			return nil
		}
		if err != nil {
			fmt.Fprintln(b.out, "error:", err)
		}
	}
}

var browseCmd = &cobra.Command{
	Use:   "browse <query...>",
	Short: "Search and interactively page through the results.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := app.Retrieval()
		if err != nil {
			return err
		}

		cron := chrono.NewStandardCron(app.Tel)
		defer cron.Stop()
		err = app.Sessions().Schedule(cron, app.Config.Sessions.SweepCron)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		page, err := service.Start(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		renderPage(out, page)
		if page.TotalItems == 0 {
			return nil
		}
		fmt.Fprintln(out, browseHelp)

		b := &browser{
			service: service,
			out:     out,
			page:    page,
			send: func(ctx context.Context, bookId int) error {
				return sendBook(ctx, out, bookId, sendTo, sendUser)
			},
		}
		return b.run(cmd.Context(), cmd.InOrStdin())
	},
}
