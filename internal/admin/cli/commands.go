package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/filex"
	"github.com/dmitrijs2005/fishtank/internal/server"
	"github.com/dmitrijs2005/fishtank/internal/server/storage"
	"github.com/spf13/cobra"
)

func newCreateAdminCommand(o *options) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create-admin EMAIL",
		Short: "Create an admin account, or promote and re-password an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pw  []byte
				err error
			)
			if passwordStdin {
				pw, err = readLine(cmd.InOrStdin())
			} else {
				pw, err = promptPassword(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			if len(pw) == 0 {
				return fmt.Errorf("%w: empty password", common.ErrorInvalidInput)
			}

			return o.withCore(cmd, func(ctx context.Context, core *server.Core) error {
				u, err := core.Users.CreateAdmin(ctx, args[0], string(pw))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin instead of the terminal")
	return cmd
}

func newPromoteCommand(o *options) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "promote EMAIL",
		Short: "Grant (or with --revoke, remove) admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCore(cmd, func(ctx context.Context, core *server.Core) error {
				u, err := core.Users.SetAdmin(ctx, args[0], !revoke)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s isAdmin=%t\n", u.Email, u.IsAdmin)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin rights instead")
	return cmd
}

func newClearTankCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-tank",
		Short: "Hide every visible fish that is not saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCore(cmd, func(ctx context.Context, core *server.Core) error {
				n, err := core.Fish.ClearTank(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d fish\n", n)
				return nil
			})
		},
	}
}

func newExportCommand(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the committed snapshot document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCore(cmd, func(ctx context.Context, core *server.Core) error {
				data, err := storage.Encode(core.Serializer.Committed())
				if err != nil {
					return err
				}
				if strings.TrimSpace(output) == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return filex.WriteFileAtomic(output, data, 0o600)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
