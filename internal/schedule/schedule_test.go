package schedule

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		BinaryPath:       "/usr/local/bin/albumlog",
		Project:          "my-project",
		Hour:             7,
		Minute:           5,
		LogPath:          "/home/me/.local/share/albumlog/logs",
		WorkingDirectory: "/home/me",
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "07:05", hour: 7, minute: 5},
		{in: "23:59", hour: 23, minute: 59},
		{in: " 0:00 ", hour: 0, minute: 0},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (h != tt.hour || m != tt.minute) {
				t.Errorf("ParseTime(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	got := strings.Join(testConfig().Args(), " ")
	want := "/usr/local/bin/albumlog run my-project --log-file /home/me/.local/share/albumlog/logs/albumlog.log"
	if got != want {
		t.Errorf("Args() = %q, want %q", got, want)
	}

	cfg := testConfig()
	cfg.Project = ""
	cfg.LogPath = ""
	if got := strings.Join(cfg.Args(), " "); got != "/usr/local/bin/albumlog run" {
		t.Errorf("Args() = %q", got)
	}
}

func TestGeneratePlist(t *testing.T) {
	plist, err := GeneratePlist(testConfig())
	if err != nil {
		t.Fatalf("GeneratePlist() error = %v", err)
	}

	for _, want := range []string{
		"<string>com.albumlog.run</string>",
		"<string>/usr/local/bin/albumlog</string>",
		"<string>run</string>",
		"<string>my-project</string>",
		"<key>Hour</key>\n\t\t<integer>7</integer>",
		"<key>Minute</key>\n\t\t<integer>5</integer>",
		"<string>/home/me</string>",
	} {
		if !strings.Contains(plist, want) {
			t.Errorf("plist missing %q\n%s", want, plist)
		}
	}

	// Must be well-formed XML
	dec := xml.NewDecoder(strings.NewReader(plist))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("plist is not valid XML: %v", err)
		}
	}
}

func TestGenerateSystemdUnits(t *testing.T) {
	cfg := testConfig()
	cfg.WorkingDirectory = "/home/me/My Music"

	service, err := GenerateService(cfg)
	if err != nil {
		t.Fatalf("GenerateService() error = %v", err)
	}
	if !strings.Contains(service, "ExecStart=/usr/local/bin/albumlog run my-project --log-file /home/me/.local/share/albumlog/logs/albumlog.log\n") {
		t.Errorf("service ExecStart wrong:\n%s", service)
	}
	if !strings.Contains(service, "Type=oneshot") {
		t.Errorf("service is not oneshot:\n%s", service)
	}

	timer, err := GenerateTimer(cfg)
	if err != nil {
		t.Fatalf("GenerateTimer() error = %v", err)
	}
	if !strings.Contains(timer, "OnCalendar=*-*-* 07:05:00\n") {
		t.Errorf("timer OnCalendar wrong:\n%s", timer)
	}
	if !strings.Contains(timer, "Persistent=true") {
		t.Errorf("timer not persistent:\n%s", timer)
	}
}

func TestSystemdQuote(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		"with space": `"with space"`,
		`say "hi"`:   `"say \"hi\""`,
		"":           `""`,
	}
	for in, want := range tests {
		if got := systemdQuote(in); got != want {
			t.Errorf("systemdQuote(%q) = %s, want %s", in, got, want)
		}
	}
}
