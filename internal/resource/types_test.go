package resource

import (
	"testing"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/stretchr/testify/assert"
)

func TestAppSpec_Branding(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{`/opt/jdemetra/bin/nbdemetra64.exe`, "nbdemetra"},
		{`/opt/jdemetra/bin/nbdemetra.exe`, "nbdemetra"},
		{`/opt/jdemetra/bin/nbdemetra`, "nbdemetra"},
		{`/opt/jdemetra/bin/NBDEMETRA64.EXE`, "NBDEMETRA"},
		{`/opt/netbeans/bin/netbeans64`, "netbeans"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, AppSpec{File: tt.file}.Branding())
		})
	}
}

func TestUserDirSpec_IsTemp(t *testing.T) {
	var nilSpec *UserDirSpec
	assert.True(t, nilSpec.IsTemp())
	assert.True(t, TempUserDir.IsTemp())
	assert.True(t, (&UserDirSpec{Label: "x"}).IsTemp())
	assert.False(t, (&UserDirSpec{Label: "x", Folder: "/u"}).IsTemp())
}

func TestConfiguration_ResolvedUserDir(t *testing.T) {
	assert.Equal(t, TempUserDir, Configuration{}.ResolvedUserDir())

	u := &UserDirSpec{Label: "dev", Folder: "/u", Clone: true}
	assert.Equal(t, *u, Configuration{UserDir: u}.ResolvedUserDir())
}

func TestConfiguration_Validate(t *testing.T) {
	valid := Configuration{
		App: AppSpec{Label: "demetra", File: "/opt/d/bin/nbdemetra"},
		Jdk: JdkSpec{Label: "jdk17", JavaHome: "/opt/jdk17"},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Configuration)
	}{
		{"no app label", func(c *Configuration) { c.App.Label = "" }},
		{"no app file", func(c *Configuration) { c.App.File = "" }},
		{"no jdk label", func(c *Configuration) { c.Jdk.Label = "" }},
		{"no java home", func(c *Configuration) { c.Jdk.JavaHome = "" }},
		{"clone without folder", func(c *Configuration) { c.UserDir = &UserDirSpec{Label: "x", Clone: true} }},
		{"plugin without file", func(c *Configuration) { c.Plugins = []PluginSpec{{Label: "p"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			assert.True(t, launcherr.Is(err, launcherr.CodeInvalidConfiguration), "got %v", err)
		})
	}
}
