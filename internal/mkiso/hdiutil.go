package mkiso

// Hdiutil drives macOS hdiutil in makehybrid mode, producing an ISO 9660
// image with Joliet extensions.
//
//	hdiutil makehybrid -iso -joliet [-default-volume-name L] [-publisher P] [-verbose] -o OUT SRC
func Hdiutil() Adapter {
	return &flagAdapter{
		command:       "hdiutil",
		args:          []string{"makehybrid", "-iso", "-joliet"},
		labelFlag:     "-default-volume-name",
		publisherFlag: "-publisher",
		verboseFlag:   "-verbose",
		outputFlag:    "-o",
	}
}
