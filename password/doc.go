// Package password hashes and verifies login passwords for the reference identity
// server using Argon2id, encoded in PHC string format:
//
//	$argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt b64>$<hash b64>
//
// Verification reads the parameters from the stored hash, so hashes produced under an
// older [Config] keep verifying after the configuration is raised.
package password
