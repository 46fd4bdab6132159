// Package letsbonk implements a client for launching and buying tokens on letsbonk.fun,
// a platform built on the Raydium LaunchLab program.
//
// Key Types and Functions:
//
//   - DEX struct: launches tokens and performs the initial buy.
//   - DerivePoolAccounts(): computes the pool, vault, authority and metadata PDAs.
//   - BuildInitializeInstruction(), BuildBuyExactInInstruction(): raw LaunchLab instructions.
//   - EstimateTokensOut(): constant-product estimate used for percent slippage.
//
// Files:
//   - letsbonk.go: Launch, CreateBuyTx and InitialBuy.
//   - accounts.go: PDA derivation.
//   - instructions.go: instruction encoding.
//   - config.go: program addresses and launch defaults.
//   - token_calc.go: bonding curve estimates.
//
// Usage example:
//
//	dex := letsbonk.NewDEX(client, assembler, sender, letsbonk.GetDefaultConfig(), logger)
//	res, err := dex.Launch(ctx, payer, mint, letsbonk.DefaultLaunchParams(name, symbol, uri))
//	if err != nil {
//	    return err
//	}
//	sig, err := dex.InitialBuy(ctx, payer, res.Mint, 0.05)
package letsbonk
