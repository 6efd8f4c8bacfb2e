package expand

import (
	"fmt"

	"github.com/ardenvoss/minish/syntax"
)

// expandAlias re-tokenizes the command's head word while it names an
// alias, up to AliasDepth times (spec §4.3 stage 1). Re-tokenizing means
// the alias value can itself introduce new assignments, words, or
// redirections ahead of the original command's remaining words.
func expandAlias(cmd *syntax.SimpleCommand, cfg *Config) (*syntax.SimpleCommand, error) {
	depth := cfg.AliasDepth
	if depth <= 0 {
		depth = DefaultAliasDepth
	}
	seen := map[string]bool{}
	for i := 0; i < depth; i++ {
		if len(cmd.Words) == 0 {
			return cmd, nil
		}
		head := string(cmd.Words[0].Token.Raw())
		value, ok := cfg.State.Alias(head)
		if !ok || seen[head] {
			return cmd, nil
		}
		seen[head] = true

		p := syntax.NewParser()
		seq, err := p.Parse([]byte(value), noMoreLines{})
		if err != nil {
			return nil, fmt.Errorf("expand: alias %q expands to invalid command: %w", head, err)
		}
		if len(seq.Items) != 1 || len(seq.Items[0].Pipeline.Commands) != 1 {
			// An alias expanding to a multi-command sequence or pipeline
			// is not expanded: the command is returned unchanged, since
			// splicing a sequence or pipeline into this command is not
			// supported.
			return cmd, nil
		}
		expanded := seq.Items[0].Pipeline.Commands[0]

		merged := &syntax.SimpleCommand{
			Assignments: append(append([]syntax.Assignment{}, expanded.Assignments...), cmd.Assignments...),
			Words:       append(append([]syntax.Word{}, expanded.Words...), cmd.Words[1:]...),
			Redirs:      append(append([]syntax.Redirection{}, expanded.Redirs...), cmd.Redirs...),
		}
		cmd = merged
	}
	return cmd, fmt.Errorf("expand: alias expansion exceeded depth %d (possible cycle)", depth)
}

// noMoreLines satisfies syntax.LineSource for alias re-tokenization: an
// alias body is a single stored line and never spans a heredoc of its own.
type noMoreLines struct{}

func (noMoreLines) NextLine() (string, bool) { return "", false }
