package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/featsearch/tokenizer"
)

func newVocabCmd() *cobra.Command {
	var (
		ext       string
		out       string
		tokenList string
		language  string
		noMeta    bool
	)

	cmd := &cobra.Command{
		Use:   "vocab <corpus-dir>",
		Short: "Derive a tokenizer vocabulary from a directory of programs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readCorpusText(args[0], ext)
			if err != nil {
				return err
			}

			var tok tokenizer.Tokenizer
			if tokenList != "" {
				tokens, err := tokenizer.LoadTokenList(tokenList, language)
				if err != nil {
					return err
				}
				tok, err = tokenizer.WordFromText(text, tokens, !noMeta)
				if err != nil {
					return err
				}
			} else {
				tok, err = tokenizer.CharacterFromText(text, !noMeta)
				if err != nil {
					return err
				}
			}

			if err := tokenizer.Save(out, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with %d atoms\n", out, tok.Size())
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", ".cl", "extension of corpus files")
	cmd.Flags().StringVarP(&out, "output", "o", "vocab.json", "vocabulary file to write")
	cmd.Flags().StringVar(&tokenList, "token-list", "", "token list file; selects the word tokenizer")
	cmd.Flags().StringVar(&language, "language", "opencl", "section of the token list")
	cmd.Flags().BoolVar(&noMeta, "no-meta-tokens", false, "omit the [START], [PAD], ... meta tokens")
	return cmd
}

func readCorpusText(root, ext string) (string, error) {
	var sb strings.Builder
	err := filepath.WalkDir(root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.Type().IsRegular() || filepath.Ext(p) != ext {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sb.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no %s files below %s", ext, root)
	}
	return sb.String(), nil
}
