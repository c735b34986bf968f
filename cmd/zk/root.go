package zk

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/rpc/client"
	"github.com/ValentinKolb/zkwire/rpc/common"
	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("cli")

	zkClient *client.Client

	// ZkCommands represents the command group for live operations
	ZkCommands = &cobra.Command{
		Use:   "zk",
		Short: "Perform operations against a server",
		Long: `Perform operations against a server. The connection can be configured
via flags or environment variables. The format of the environment variables is
ZKWIRE_<flag> (e.g. ZKWIRE_TRANSPORT_ENDPOINTS=localhost:2181).`,
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: teardownClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags
	util.SetupClientFlags(ZkCommands)

	key := "metrics"
	ZkCommands.PersistentFlags().Bool(key, false, util.WrapString("Print the transport metrics in Prometheus format after the command"))

	// Add subcommands
	ZkCommands.AddCommand(createCmd)
	ZkCommands.AddCommand(deleteCmd)
	ZkCommands.AddCommand(setCmd)
	ZkCommands.AddCommand(getCmd)
	ZkCommands.AddCommand(existsCmd)
	ZkCommands.AddCommand(lsCmd)
	ZkCommands.AddCommand(syncCmd)
	ZkCommands.AddCommand(getACLCmd)
	ZkCommands.AddCommand(setACLCmd)
	ZkCommands.AddCommand(watchCmd)
	ZkCommands.AddCommand(pingCmd)
	ZkCommands.AddCommand(perfTestCmd)
}

// setupClient connects the client and performs the handshake
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if err := common.InitLoggers(config.LogLevel); err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	zkClient, err = client.NewClient(*config, t)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	Logger.Debugf("Connected with session 0x%x", zkClient.Session().ID)
	return nil
}

// teardownClient closes the session and optionally dumps the metrics
func teardownClient(_ *cobra.Command, _ []string) error {
	if zkClient == nil {
		return nil
	}
	err := zkClient.Close()

	if viper.GetBool("metrics") {
		fmt.Println()
		vmetrics.WritePrometheus(os.Stdout, false)
	}
	return err
}
