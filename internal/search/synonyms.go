package search

// topicSynonyms maps common query terms to vocabulary variants used by
// web sources and the knowledge corpus. Entries are ordered most common
// first because expansion is capped per term.
var topicSynonyms = map[string][]string{
	// Privacy and security vocabulary.
	"privacy":    {"anonymity", "confidentiality", "opsec"},
	"anonymity":  {"privacy", "pseudonymity", "anonymous"},
	"anonymous":  {"anonymity", "pseudonymous"},
	"security":   {"infosec", "hardening", "opsec"},
	"opsec":      {"security", "privacy"},
	"encryption": {"cryptography", "crypto", "cipher"},
	"encrypted":  {"encryption", "cipher"},
	"tor":        {"onion", "darknet", "hidden"},
	"onion":      {"tor", "hidden"},
	"darknet":    {"darkweb", "tor", "onion"},
	"darkweb":    {"darknet", "tor"},
	"vpn":        {"tunnel", "wireguard", "openvpn"},
	"tracking":   {"fingerprinting", "telemetry", "surveillance"},
	"leak":       {"breach", "exposure", "dump"},
	"breach":     {"leak", "compromise", "incident"},
	"exploit":    {"vulnerability", "cve", "poc"},
	"malware":    {"trojan", "ransomware", "virus"},
	"password":   {"credential", "passphrase", "login"},

	// Instructional vocabulary.
	"guide":    {"tutorial", "howto", "walkthrough"},
	"tutorial": {"guide", "howto", "introduction"},
	"howto":    {"guide", "tutorial"},
	"compare":  {"comparison", "versus", "vs"},
	"best":     {"top", "recommended"},
	"review":   {"comparison", "evaluation"},
	"setup":    {"install", "configure", "configuration"},
	"install":  {"setup", "installation"},
	"fix":      {"solve", "repair", "troubleshoot"},
	"problem":  {"issue", "error", "bug"},

	// Research vocabulary.
	"paper":    {"study", "research", "publication"},
	"research": {"study", "paper", "analysis"},
	"news":     {"latest", "update", "announcement"},
	"history":  {"timeline", "background", "origin"},
}
