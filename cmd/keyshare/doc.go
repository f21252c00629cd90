// keyshare splits secrets into shares using Shamir's Secret Sharing, such
// that any threshold of the shares recover the secret.
//
// Usage:
//
//	keyshare split <data> <shares> <threshold>
//	keyshare merge <threshold> <share>...
//	keyshare key split -t <threshold> -n <shares> (--key <key> | --generate) [--bundle <file>]
//	keyshare key merge [--pubkey <hex>] [--wif] (--bundle <file> | <share>...)
//	keyshare key reshare --x <index> (--bundle <file> | <share>...)
//	keyshare seal -i <input> -o <output> -s <shares-file> -t <threshold> -n <shares>
//	keyshare unseal -i <input> -o <output> -s <shares-file>
//	keyshare version
//
// split and merge share arbitrary text. The key commands share secp256k1
// private keys over the scalar field of the curve; a merged key is checked
// against its public key when one is known. seal encrypts a file with a
// fresh key and splits the key; unseal needs at least threshold of those
// shares.
//
// Shares are printed as base58check strings, or hex with --format hex.
// Defaults for the threshold, the share count, the format and the seal mode
// can be set in keyshare.yaml in the user config directory:
//
//	threshold: 3
//	shares: 5
//	format: base58
//	sealMode: chacha20-poly1305
//	testnet: false
//
// Example:
// Split a new private key into 5 shares, requiring 3 to recover it:
//
// > keyshare key split -t 3 -n 5 --generate --bundle wallet.cbor
//
// Recover and verify it:
//
// > keyshare key merge --bundle wallet.cbor --wif
package main
