package anthrocheck

// Version is the anthrocheck release.
const Version = "0.4.0"
