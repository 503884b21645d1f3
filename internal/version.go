package internal

// Version is the kanavox release version.
const Version = "0.3.0"
