package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tally/internal/impulse"
	"tally/internal/services"
)

// PromptConfirmer asks on out and reads a y/n answer from in. Unrecognised
// answers are asked again; end of input counts as an error so a batch run
// does not silently decline.
func PromptConfirmer(in io.Reader, out io.Writer) services.Confirmer {
	reader := bufio.NewReader(in)
	return services.ConfirmFunc(func(ctx context.Context, d impulse.Decision) (bool, error) {
		for {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			fmt.Fprintf(out, "%s [y/n]: ", d.Message())

			line, err := reader.ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("no answer to impulse prompt: %w", io.ErrUnexpectedEOF)
			}
			if err != nil {
				return false, fmt.Errorf("read answer: %w", err)
			}
		}
	})
}
