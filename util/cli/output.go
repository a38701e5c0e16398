package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/workledger/registry-services/models/registry"
	"github.com/workledger/registry-services/models/service"
)

const timeFormat = "2006-01-02 15:04:05 UTC"

var rule = strings.Repeat("=", 80)

// PrintWorkRecord writes a human-readable description of record.
func PrintWorkRecord(w io.Writer, record *registry.WorkRecord) {
	fmt.Fprintf(w, "   Work ID:      %s\n", record.WorkID)
	fmt.Fprintf(w, "   Title:        %s\n", record.Title)
	fmt.Fprintf(w, "   Type:         %s\n", record.WorkType)
	fmt.Fprintf(w, "   Content Hash: %s\n", record.ShortHash())
	fmt.Fprintf(w, "   Creator:      %s\n", record.Creator)
	fmt.Fprintf(w, "   Registered:   %s\n", record.RegisteredAt.UTC().Format(timeFormat))
	if record.Metadata != "" {
		fmt.Fprintf(w, "   Metadata:     %s\n", record.Metadata)
	}
}

// PrintWorkList writes the works registered by creator.
func PrintWorkList(w io.Writer, creator string, records []*registry.WorkRecord) {
	fmt.Fprintf(w, "Works registered by %s\n\n", creator)
	if len(records) == 0 {
		fmt.Fprintln(w, "No works registered by this creator")
		return
	}
	fmt.Fprintf(w, "Total works: %d\n\n", len(records))
	fmt.Fprintln(w, rule)
	for i, record := range records {
		fmt.Fprintf(w, "\n%d.\n", i+1)
		PrintWorkRecord(w, record)
	}
	fmt.Fprintln(w, "\n"+rule)
}

// PrintRegistration writes the outcome of a registration.
func PrintRegistration(w io.Writer, result *service.RegistrationResult) {
	switch result.Outcome {
	case service.OutcomeCommitted:
		fmt.Fprintln(w, "Work registered")
		fmt.Fprintf(w, "   Work ID:            %s\n", result.WorkID)
		fmt.Fprintf(w, "   Content Hash:       %s\n", result.ContentHash)
		fmt.Fprintf(w, "   Block:              %d\n", result.BlockRef)
		fmt.Fprintf(w, "   Resources consumed: %d of %d\n", result.ResourcesConsumed, result.ResourceLimit)
		fmt.Fprintf(w, "   Handle:             %s\n", result.Handle)
	case service.OutcomeDuplicate:
		fmt.Fprintln(w, "This content is already registered")
		if result.ExistingRecord != nil {
			PrintWorkRecord(w, result.ExistingRecord)
		} else {
			fmt.Fprintf(w, "   Work ID:      %s\n", result.WorkID)
		}
	default:
		fmt.Fprintf(w, "Registration failed in %s: %s\n", result.FailedStage, result.ErrorMessage)
		if result.Handle != "" {
			fmt.Fprintf(w, "   Handle:             %s\n", result.Handle)
		}
		if result.Settled {
			fmt.Fprintf(w, "   Block:              %d\n", result.BlockRef)
			fmt.Fprintf(w, "   Resources consumed: %d\n", result.ResourcesConsumed)
		}
	}
	if result.DuplicateCheckSkipped {
		fmt.Fprintln(w, "   Note: the duplicate check could not run")
	}
	if result.UsedFallbackLimit {
		fmt.Fprintln(w, "   Note: resource estimate unavailable, used the fallback limit")
	}
}

// PrintResolution writes the answer to a lookup.
func PrintResolution(w io.Writer, result *service.ResolutionResult) {
	switch result.Outcome {
	case service.OutcomeFound:
		fmt.Fprintln(w, "Registered work found")
		PrintWorkRecord(w, result.Record)
		switch result.Verdict {
		case service.VerdictMatched:
			fmt.Fprintln(w, "\nContent matches the registered work")
		case service.VerdictUnmatched:
			fmt.Fprintln(w, "\nContent does NOT match the registered work")
			fmt.Fprintf(w, "   Supplied hash: %s\n", result.SecondaryHash)
		}
	case service.OutcomeNotFound:
		fmt.Fprintln(w, "No work with that id is registered")
	case service.OutcomeNotRegistered:
		fmt.Fprintf(w, "Content %s is not registered\n", result.ContentHash)
	case service.OutcomeMissingInput:
		fmt.Fprintln(w, "Nothing to look up. Supply a work id, a hash or a file.")
	}
}
