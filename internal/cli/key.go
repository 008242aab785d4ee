package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/uaenergy/news/internal/auth"
	"github.com/uaenergy/news/internal/ui"
)

// secretStore is swapped in tests
var secretStore = auth.DefaultStore

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored OpenAI API key",
	Long: `Stores the OpenAI API key in your OS keyring, or in a private file under
~/.uaenergy where no keyring is available. OPENAI_API_KEY takes precedence
over the stored key.`,
	Example: `  # Save a key (prompted without echo)
  uaenergy key set

  # Save a key from a pipe
  echo "$KEY" | uaenergy key set

  # Show which key is used
  uaenergy key status`,
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the OpenAI API key",
	Args:  cobra.NoArgs,
	RunE:  runKeySet,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored OpenAI API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyDelete,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the OpenAI API key comes from",
	Args:  cobra.NoArgs,
	RunE:  runKeyStatus,
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyDeleteCmd)
	keyCmd.AddCommand(keyStatusCmd)
}

// readKey prompts on a terminal and reads the first line otherwise
func readKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "OpenAI API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runKeySet(cmd *cobra.Command, args []string) error {
	key, err := readKey(cmd)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if key == "" {
		return fmt.Errorf("empty API key")
	}

	store, err := secretStore()
	if err != nil {
		return err
	}
	if err := store.Set(auth.OpenAIKeyName, key); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Key %s saved to %s\n",
		ui.Success("✓"), ui.Bold(auth.MaskSecret(key)), store.Backend())
	return nil
}

func runKeyDelete(cmd *cobra.Command, args []string) error {
	store, err := secretStore()
	if err != nil {
		return err
	}
	if err := store.Delete(auth.OpenAIKeyName); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Key removed from %s\n", ui.Success("✓"), store.Backend())
	return nil
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if a := GetAppFromCmd(cmd); a != nil && a.Config.OpenAIAPIKey != "" {
		fmt.Fprintf(out, "  %-10s %s\n", "Source", ui.Value("OPENAI_API_KEY"))
		fmt.Fprintf(out, "  %-10s %s\n", "Key", auth.MaskSecret(a.Config.OpenAIAPIKey))
		return nil
	}

	store, err := secretStore()
	if err != nil {
		return err
	}
	key, err := store.Get(auth.OpenAIKeyName)
	if errors.Is(err, auth.ErrNotFound) {
		fmt.Fprintln(out, ui.Info("No API key configured. Run \"uaenergy key set\"."))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %-10s %s\n", "Source", ui.Value(store.Backend()))
	fmt.Fprintf(out, "  %-10s %s\n", "Key", auth.MaskSecret(key))
	return nil
}
