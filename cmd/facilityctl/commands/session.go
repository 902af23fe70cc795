package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marmos91/facilityd/internal/cli/output"
	"github.com/marmos91/facilityd/internal/cli/prompt"
	booking "github.com/marmos91/facilityd/internal/protocol/booking"
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
	"github.com/marmos91/facilityd/pkg/client"
)

// session drives the interactive menu loop against a connected client.
type session struct {
	client    *client.Client
	addr      string
	semantics booking.Semantics
}

func (s *session) run() error {
	fmt.Println("Facility Booking Client")
	_ = output.SimpleTable(os.Stdout, [][2]string{
		{"Server", s.addr},
		{"Semantics", string(s.semantics)},
	})
	fmt.Println()

	options := []prompt.SelectOption{
		{Label: "Query availability", Value: "query"},
		{Label: "Book facility", Value: "book"},
		{Label: "Change booking", Value: "change"},
		{Label: "Monitor facility", Value: "monitor"},
		{Label: "Extend booking (idempotent)", Value: "extend"},
		{Label: "Cancel booking (non-idempotent)", Value: "cancel"},
		{Label: "Exit", Value: "exit"},
	}

	for {
		choice, err := prompt.Select("Choose an operation", options)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return nil
			}
			return err
		}

		switch choice {
		case "query":
			err = s.runQuery()
		case "book":
			err = s.runBook()
		case "change":
			err = s.runChange()
		case "monitor":
			err = s.runMonitor()
		case "extend":
			err = s.runExtend()
		case "cancel":
			err = s.runCancel()
		case "exit":
			return nil
		}

		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				continue
			}
			printCallError(err)
		}
	}
}

func (s *session) runQuery() error {
	facility, err := prompt.InputRequired("Facility name")
	if err != nil {
		return err
	}
	daysInput, err := prompt.Input("Days (0=Mon .. 6=Sun, comma-separated)", "0,1,2,3,4,5,6")
	if err != nil {
		return err
	}
	days, err := parseDays(daysInput)
	if err != nil {
		return err
	}

	free, err := s.client.Query(facility, days)
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailability for %q:\n", facility)
	if len(free) == 0 {
		fmt.Println("  Fully booked for the requested days.")
		fmt.Println()
		return nil
	}
	printIntervals(free)
	return nil
}

func (s *session) runBook() error {
	facility, err := prompt.InputRequired("Facility name")
	if err != nil {
		return err
	}
	start, err := inputTriple("Start")
	if err != nil {
		return err
	}
	end, err := inputTriple("End")
	if err != nil {
		return err
	}

	id, err := s.client.Book(facility, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("\nBooking confirmed: %s (%s, %s - %s)\n\n", id, facility, start, end)
	return nil
}

func (s *session) runChange() error {
	id, err := prompt.InputRequired("Confirmation ID")
	if err != nil {
		return err
	}
	offset, err := prompt.InputInt("Offset in minutes (negative advances, positive postpones)", 30)
	if err != nil {
		return err
	}

	if err := s.client.Change(id, int32(offset)); err != nil {
		return err
	}

	fmt.Printf("\nBooking %s shifted by %d minutes.\n\n", id, offset)
	return nil
}

func (s *session) runMonitor() error {
	facility, err := prompt.InputRequired("Facility name")
	if err != nil {
		return err
	}
	seconds, err := prompt.InputInt("Monitoring duration in seconds", 60)
	if err != nil {
		return err
	}
	if seconds <= 0 {
		return fmt.Errorf("monitoring duration must be positive")
	}

	window := time.Duration(seconds) * time.Second
	fmt.Printf("\nMonitoring %q for %s. The client blocks until the window expires.\n", facility, window)

	err = s.client.Monitor(facility, window, func(update wire.MonitorUpdate) {
		fmt.Printf("\nUPDATE: availability changed for %q\n", update.Facility)
		if len(update.Free) == 0 {
			fmt.Println("  Fully booked.")
			fmt.Println()
			return
		}
		printIntervals(update.Free)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Monitoring window for %q expired.\n\n", facility)
	return nil
}

func (s *session) runExtend() error {
	id, err := prompt.InputRequired("Confirmation ID")
	if err != nil {
		return err
	}
	extra, err := prompt.InputInt("Extension in minutes", 30)
	if err != nil {
		return err
	}
	if extra <= 0 {
		return fmt.Errorf("extension must be positive")
	}

	if err := s.client.Extend(id, uint32(extra)); err != nil {
		return err
	}

	fmt.Printf("\nBooking %s extended by %d minutes.\n\n", id, extra)
	return nil
}

func (s *session) runCancel() error {
	id, err := prompt.InputRequired("Confirmation ID")
	if err != nil {
		return err
	}
	ok, err := prompt.Confirm(fmt.Sprintf("Cancel booking %s", id), false)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.client.Cancel(id); err != nil {
		return err
	}

	fmt.Printf("\nBooking %s cancelled.\n\n", id)
	return nil
}

// inputTriple prompts for the day, hour, and minute of one end of a range.
func inputTriple(label string) (wire.TimeTriple, error) {
	day, err := prompt.InputInt(label+" day (0=Mon .. 6=Sun)", 0)
	if err != nil {
		return wire.TimeTriple{}, err
	}
	hour, err := prompt.InputInt(label+" hour (0-23)", 9)
	if err != nil {
		return wire.TimeTriple{}, err
	}
	minute, err := prompt.InputInt(label+" minute (0-59)", 0)
	if err != nil {
		return wire.TimeTriple{}, err
	}

	t := wire.TimeTriple{Day: uint8(day), Hour: uint8(hour), Minute: uint8(minute)}
	if day < 0 || hour < 0 || minute < 0 || !t.Valid() {
		return wire.TimeTriple{}, fmt.Errorf("%d/%d:%d is not a valid time within the week", day, hour, minute)
	}
	return t, nil
}

// parseDays parses a comma-separated day list such as "0,2,4".
func parseDays(input string) ([]uint8, error) {
	parts := strings.Split(input, ",")
	days := make([]uint8, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid day %q: must be 0 (Mon) through 6 (Sun)", p)
		}
		days = append(days, uint8(d))
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no days given")
	}
	return days, nil
}

func printIntervals(free []wire.Interval) {
	table := output.NewTableData("From", "To")
	for _, iv := range free {
		table.AddRow(iv.Start.String(), iv.End.EndString())
	}
	_ = output.PrintTable(os.Stdout, table)
	fmt.Println()
}

func printCallError(err error) {
	var srvErr *client.ServerError
	if errors.As(err, &srvErr) {
		fmt.Printf("\nServer rejected the request: %s\n\n", srvErr.Detail)
		return
	}
	if errors.Is(err, client.ErrTimeout) {
		fmt.Printf("\nNo reply from server: %v\n\n", err)
		return
	}
	fmt.Printf("\nRequest failed: %v\n\n", err)
}
