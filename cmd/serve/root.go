package serve

import (
	"fmt"

	"github.com/ValentinKolb/hKV/cmd/util"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the hKV server",
		Long:    `Start the hKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is HKV_<flag> (e.g. HKV_LOG_LEVEL=debug)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	defaults := common.DefaultServerConfig()

	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.Endpoint, util.WrapString("The address on which the server will listen (e.g. localhost:8080 or /tmp/hkv.sock for the unix transport)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, util.WrapString("Write timeout of a connection in seconds (read and write timeout for http), 0 disables it"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, defaults.LogLevel, util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "memtable-shards"
	ServeCmd.PersistentFlags().Int(key, defaults.MemtableShards, util.WrapString("Number of shards of the in-memory storage, 0 selects the default"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.WorkersPerConn, util.WrapString("Maximum number of requests processed concurrently per connection (tcp and unix)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.BufferSize/1024, util.WrapString("Size of the read buffers in KB (tcp and unix)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, util.WrapString("Whether to enable TCP_NODELAY (tcp only)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPKeepAliveSec, util.WrapString("The keepalive interval in seconds (tcp only)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, util.WrapString("The linger time in seconds (tcp only)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.MemtableShards = viper.GetInt("memtable-shards")
	serveCmdConfig.Transport.WorkersPerConn = viper.GetInt("workers-per-conn")
	serveCmdConfig.Transport.BufferSize = viper.GetInt("buffer-size") * 1024
	serveCmdConfig.Transport.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.Transport.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.Transport.TCPLingerSec = viper.GetInt("tcp-linger")

	if serveCmdConfig.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if serveCmdConfig.MemtableShards < 0 {
		return fmt.Errorf("memtable-shards must not be negative")
	}
	if serveCmdConfig.Transport.WorkersPerConn < 1 {
		return fmt.Errorf("workers-per-conn must be at least 1")
	}
	if serveCmdConfig.Transport.BufferSize <= 0 {
		return fmt.Errorf("buffer-size must be positive")
	}
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	return nil
}

// run starts the hKV server and blocks until it stops
func run(_ *cobra.Command, _ []string) error {
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	util.Logger.Infof("starting server (transport=%s, serializer=%s)\n%s",
		viper.GetString("transport"), viper.GetString("serializer"), serveCmdConfig.String())

	return server.NewRPCServer(serveCmdConfig, t, s).Serve()
}
