package buildinfo

const Graffiti = " _     _     _____ __   _______ \n| |   | |   |  _  |\\ \\ / /  _  \\\n| |   | |   | | | | \\ V /| | | |\n| |   | |   | | | |  \\ / | | | |\n| |___| |___\\ \\_/ /  | | | |/ /\n\\_____/\\_____/\\___/  \\_/ |___/\n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "LLOYD"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
