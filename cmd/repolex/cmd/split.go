package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/repolex/internal/config"
	"github.com/corey/repolex/internal/domain/token"
)

var splitFlags struct {
	noStem bool
}

var splitCmd = &cobra.Command{
	Use:   "split [identifier ...]",
	Short: "Split identifiers into normalized tokens",
	Long: "Splits each identifier on delimiters and case transitions and stems the " +
		"pieces. With no arguments, identifiers are read from stdin, one per line.",
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().BoolVar(&splitFlags.noStem, "no-stem", false, "print split tokens without stemming")
}

func runSplit(cmd *cobra.Command, args []string) error {
	stemmer := token.NewStemmer(config.Default().StemCacheSize)

	emit := func(ident string) {
		first := true
		for tok := range token.Split(ident) {
			if !splitFlags.noStem {
				tok = stemmer.Stem(tok)
			}
			if !first {
				fmt.Print(" ")
			}
			first = false
			fmt.Print(tok)
		}
		fmt.Println()
	}

	if len(args) > 0 {
		for _, ident := range args {
			emit(ident)
		}
		return nil
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		emit(sc.Text())
	}
	return sc.Err()
}
