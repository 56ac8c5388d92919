package internal

import (
	"fmt"
	"os"
	"strings"
)

const Version = "1.0.0"

// PrintUsage writes the top-level usage text and subcommand list to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `complaintrag - Complaint Narrative Search and Q&A for CrediTrust

Version: %s

USAGE:
    complaintrag [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.complaintrag/config/complaintrag.yaml)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    clean
        Filter and normalize raw complaint CSV exports

    index
        Chunk, embed and index cleaned complaint narratives

    ask
        Answer a question from the indexed complaints

    stats
        Show index statistics

EXAMPLES:
    # Clean a raw CFPB export
    complaintrag clean -input complaints.csv -output cleaned.csv

    # Build the vector index from cleaned data
    complaintrag index -input cleaned.csv

    # Ask a question
    complaintrag ask "Why are customers unhappy with BNPL?"

    # Ask with more evidence and self-evaluation
    complaintrag ask -k 10 -evaluate "What billing problems do credit card holders report?"

    # Show statistics
    complaintrag stats

For detailed help on each command, use:
    complaintrag <command> -help
`, Version)
}

// StringList is a flag.Value that collects repeated string flags.
type StringList []string

func (s *StringList) String() string {
	return strings.Join(*s, ",")
}

func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
