package ethereum_client

// Contract ABI fragments, limited to what the adapter consumes.
const EscrowFactoryABI = `[
	{
		"anonymous": false,
		"inputs": [
			{
				"components": [
					{"name": "orderHash", "type": "bytes32"},
					{"name": "hashlock", "type": "bytes32"},
					{"name": "maker", "type": "uint256"},
					{"name": "taker", "type": "uint256"},
					{"name": "token", "type": "uint256"},
					{"name": "amount", "type": "uint256"},
					{"name": "safetyDeposit", "type": "uint256"},
					{"name": "timelocks", "type": "uint256"}
				],
				"indexed": false,
				"name": "srcImmutables",
				"type": "tuple"
			},
			{
				"components": [
					{"name": "maker", "type": "uint256"},
					{"name": "amount", "type": "uint256"},
					{"name": "token", "type": "uint256"},
					{"name": "safetyDeposit", "type": "uint256"},
					{"name": "chainId", "type": "uint256"}
				],
				"indexed": false,
				"name": "dstImmutablesComplement",
				"type": "tuple"
			}
		],
		"name": "SrcEscrowCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "escrow", "type": "address"},
			{"indexed": false, "name": "hashlock", "type": "bytes32"},
			{"indexed": false, "name": "taker", "type": "uint256"}
		],
		"name": "DstEscrowCreated",
		"type": "event"
	},
	{
		"inputs": [
			{
				"components": [
					{"name": "orderHash", "type": "bytes32"},
					{"name": "hashlock", "type": "bytes32"},
					{"name": "maker", "type": "uint256"},
					{"name": "taker", "type": "uint256"},
					{"name": "token", "type": "uint256"},
					{"name": "amount", "type": "uint256"},
					{"name": "safetyDeposit", "type": "uint256"},
					{"name": "timelocks", "type": "uint256"}
				],
				"name": "immutables",
				"type": "tuple"
			}
		],
		"name": "addressOfEscrowSrc",
		"outputs": [{"name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const ERC20ABI = `[
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
