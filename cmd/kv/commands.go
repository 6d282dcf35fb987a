package kv

import (
	"fmt"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	hgetCmd = &cobra.Command{
		Use:   "hget [table] [key]",
		Short: "Reads the value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := rpcClient.Hget(args[0], args[1])
			if storage.CodeOf(err) == storage.RetCNotFound {
				fmt.Printf("key=%s, found=false\n", args[1])
				return nil
			} else if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=true, value=%s\n", args[1], v)
			return nil
		},
	}
	hgetallCmd = &cobra.Command{
		Use:   "hgetall [table]",
		Short: "Lists all pairs of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := rpcClient.Hgetall(args[0])
			if err != nil {
				return err
			}
			storage.SortKvpairs(pairs)
			for _, p := range pairs {
				fmt.Println(p)
			}
			fmt.Printf("(%d pairs)\n", len(pairs))
			return nil
		},
	}
	hmgetCmd = &cobra.Command{
		Use:   "hmget [table] [key...]",
		Short: "Reads the values of several keys",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args[1:]
			values, err := rpcClient.Hmget(args[0], keys...)
			if err != nil {
				return err
			}
			printValues(keys, values)
			return nil
		},
	}
	hsetCmd = &cobra.Command{
		Use:   "hset [table] [key] [value]",
		Short: "Sets the value of a key and prints the previous value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[2])
			if err != nil {
				return err
			}
			prev, err := rpcClient.Hset(args[0], args[1], value)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, prev=%s\n", args[1], prev)
			return nil
		},
	}
	hmsetCmd = &cobra.Command{
		Use:   "hmset [table] [key] [value] [key value...]",
		Short: "Sets the values of several keys",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args)%2 == 0 {
				return fmt.Errorf("expected a table followed by key value pairs, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := make([]storage.Kvpair, 0, len(args)/2)
			keys := make([]string, 0, len(args)/2)
			for i := 1; i < len(args); i += 2 {
				value, err := parseValue(args[i+1])
				if err != nil {
					return err
				}
				pairs = append(pairs, storage.NewKvpair(args[i], value))
				keys = append(keys, args[i])
			}
			prev, err := rpcClient.Hmset(args[0], pairs...)
			if err != nil {
				return err
			}
			printValues(keys, prev)
			return nil
		},
	}
	hdelCmd = &cobra.Command{
		Use:   "hdel [table] [key]",
		Short: "Deletes a key and prints the removed value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := rpcClient.Hdel(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, prev=%s\n", args[1], prev)
			return nil
		},
	}
	hmdelCmd = &cobra.Command{
		Use:   "hmdel [table] [key...]",
		Short: "Deletes several keys",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args[1:]
			prev, err := rpcClient.Hmdel(args[0], keys...)
			if err != nil {
				return err
			}
			printValues(keys, prev)
			return nil
		},
	}
	hexistCmd = &cobra.Command{
		Use:   "hexist [table] [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := rpcClient.Hexist(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[1], found)
			return nil
		},
	}
	hmexistCmd = &cobra.Command{
		Use:   "hmexist [table] [key...]",
		Short: "Checks if several keys exist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args[1:]
			found, err := rpcClient.Hmexist(args[0], keys...)
			if err != nil {
				return err
			}
			for i, key := range keys {
				fmt.Printf("key=%s, found=%t\n", key, found[i])
			}
			return nil
		},
	}
)

// parseValue converts command line text into a value of the kind given by --type
func parseValue(text string) (storage.Value, error) {
	kind, err := storage.ParseKind(viper.GetString("type"))
	if err != nil {
		return storage.Value{}, err
	}
	if kind == storage.KindNone {
		return storage.Value{}, fmt.Errorf("--type must name a value kind")
	}
	return storage.ParseValue(kind, text)
}

func printValues(keys []string, values []storage.Value) {
	for i, key := range keys {
		fmt.Printf("key=%s, value=%s\n", key, values[i])
	}
}
