package main

import (
	"context"
	"time"

	"github.com/sat20-labs/projector/common"
	"github.com/sat20-labs/projector/config"
	"github.com/sat20-labs/projector/projector"
	"github.com/sat20-labs/projector/rpcserver"
	"github.com/sat20-labs/projector/share/bitcoin_rpc"
)

func init() {
	config.InitSigInt()
}

func main() {
	yamlcfg := config.InitConfig("")
	if yamlcfg == nil {
		return
	}
	config.InitLog(yamlcfg)

	common.Log.Info("Starting...")
	defer func() {
		config.ReleaseRes()
		common.Log.Info("shut down")
	}()

	err := InitRpc(yamlcfg)
	if err != nil {
		common.Log.Error(err)
		return
	}

	engine := projector.NewEngine(projector.Limits{
		MaxBlockWeight: yamlcfg.Projector.MaxBlockWeight,
		MaxBlocks:      yamlcfg.Projector.MaxBlocks,
	})

	_, err = InitRpcService(yamlcfg, engine)
	if err != nil {
		common.Log.Error(err)
		return
	}

	source, err := NewMempoolSource(yamlcfg)
	if err != nil {
		common.Log.Error(err)
		return
	}

	interval := time.Duration(yamlcfg.Projector.PollInterval) * time.Second
	daemon := projector.NewDaemon(engine, source, interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	config.RegistSigIntFunc(func() {
		common.Log.Info("handle SIGINT for close projection daemon")
		cancel()
	})
	go func() {
		daemon.Run(ctx)
		done <- true
	}()

	common.Log.Info("projection daemon start...")
	<-done

	common.Log.Info("prepare to release resource...")
}

func NewMempoolSource(conf *config.YamlConf) (projector.Source, error) {
	if conf.Projector.DataSource == "esplora" {
		return bitcoin_rpc.NewEsploraSource(conf.Projector.EsploraURL), nil
	}
	btc := conf.ShareRPC.Bitcoin
	return bitcoin_rpc.NewNodeSource(btc.Host, btc.Port, btc.User, btc.Password, false), nil
}

func InitRpcService(conf *config.YamlConf, engine *projector.Engine) (*rpcserver.Rpc, error) {
	addr := conf.RPCService.Addr
	host := conf.RPCService.Swagger.Host
	scheme := ""
	for _, v := range conf.RPCService.Swagger.Schemes {
		scheme += v + ","
	}
	proxy := conf.RPCService.Proxy
	logPath := conf.RPCService.LogPath

	staleAfter := 4 * time.Duration(conf.Projector.PollInterval) * time.Second
	rpc := rpcserver.NewRpc(engine, staleAfter)
	err := rpc.Start(addr, host, scheme,
		proxy, logPath, &conf.RPCService.API)
	if err != nil {
		return rpc, err
	}
	common.Log.Info("rpc started")
	return rpc, nil
}

func InitRpc(conf *config.YamlConf) error {
	btc := conf.ShareRPC.Bitcoin
	err := bitcoin_rpc.InitBitconRpc(
		btc.Host,
		btc.Port,
		btc.User,
		btc.Password,
		false,
	)
	if err != nil {
		return err
	}
	return nil
}
