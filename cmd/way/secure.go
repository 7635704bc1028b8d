package main

import (
	"github.com/spf13/cobra"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/secret"
)

func newSecureCmd() *cobra.Command {
	var key, value string
	cmd := &cobra.Command{
		Use:   "secure URL",
		Short: "Encrypt a credential for store.urlSecret or lock.passwordSecret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secret.New(key).Secure(cmd.Context(), args[0], value); err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"secured": args[0]})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "scy key (default "+secret.DefaultKey+")")
	cmd.Flags().StringVar(&value, "value", "", "Credential to encrypt")
	return cmd
}
