package mkiso

// Mkisofs drives cdrtools mkisofs with Rock Ridge and Joliet extensions and
// relaxed ISO 9660 file names.
//
//	mkisofs -l -J -R [-V L] [-P P] [-v] -o OUT SRC
func Mkisofs() Adapter {
	return mkisofsCompatible("mkisofs")
}

// Genisoimage drives the cdrkit fork of mkisofs, found on Debian based
// systems.
func Genisoimage() Adapter {
	return mkisofsCompatible("genisoimage")
}

// Xorrisofs drives the mkisofs emulation of xorriso.
func Xorrisofs() Adapter {
	return mkisofsCompatible("xorrisofs")
}

func mkisofsCompatible(command string) Adapter {
	return &flagAdapter{
		command:       command,
		args:          []string{"-l", "-J", "-R"},
		labelFlag:     "-V",
		publisherFlag: "-P",
		verboseFlag:   "-v",
		outputFlag:    "-o",
	}
}
