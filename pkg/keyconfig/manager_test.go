package keyconfig_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/mocks"
	"github.com/thoreinstein/keyconfig/pkg/source/memory"
)

type person struct {
	Name       string `keyconfig:"IpAddress,required"`
	Occupation string `keyconfig:""`
}

type serverSettings struct {
	Host     string        `keyconfig:"Host,required"`
	Port     int           `keyconfig:"" default:"8080"`
	Debug    bool          `keyconfig:""`
	Ratio    float64       `keyconfig:""`
	Timeout  time.Duration `keyconfig:"RequestTimeout" default:"30s"`
	Started  time.Time     `keyconfig:""`
	Tags     []string      `keyconfig:""`
	MaxConns *int          `keyconfig:""`
	Retries  uint8         `keyconfig:",required"`
	note     string
}

type withMap struct {
	Name   string         `keyconfig:""`
	Labels map[string]int `keyconfig:""`
}

type requiredPointer struct {
	Token *string `keyconfig:",required"`
}

func TestLoad_Example(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"IpAddress":  "Tim Reynolds",
		"Occupation": "Tester",
	}))

	got, err := keyconfig.Load[person](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := person{Name: "Tim Reynolds", Occupation: "Tester"}
	if *got != want {
		t.Errorf("Load() = %+v, want %+v", *got, want)
	}
}

func TestSaveThenFulfill(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"IpAddress":  "Tim Reynolds",
		"Occupation": "Tester",
	}))

	cfg, err := keyconfig.Load[person](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.Name = "Bob"
	if err := keyconfig.Save(src, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := keyconfig.Fulfill(src, cfg); err != nil {
		t.Fatalf("Fulfill() error = %v", err)
	}

	if cfg.Name != "Bob" {
		t.Errorf("Name = %q, want %q", cfg.Name, "Bob")
	}
	if raw, _ := src.Get("IpAddress"); raw != "Bob" {
		t.Errorf("stored IpAddress = %v, want Bob", raw)
	}
}

func TestRoundTrip(t *testing.T) {
	conns := 64
	original := &serverSettings{
		Host:     "db.internal",
		Port:     5432,
		Debug:    true,
		Ratio:    0.75,
		Timeout:  90 * time.Second,
		Started:  time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Tags:     []string{"primary", "eu"},
		MaxConns: &conns,
		Retries:  3,
	}

	src := memory.New()
	if err := keyconfig.Save(src, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := keyconfig.Load[serverSettings](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
	if loaded.MaxConns == original.MaxConns {
		t.Error("loaded pointer aliases the saved instance")
	}
}

func TestRequiredEnforcement(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"Occupation": "Tester",
	}))

	t.Run("check", func(t *testing.T) {
		ok, err := keyconfig.CheckRequired[person](src)
		if err != nil {
			t.Fatalf("CheckRequired() error = %v", err)
		}
		if ok {
			t.Error("CheckRequired() = true, want false")
		}
	})

	t.Run("load", func(t *testing.T) {
		_, err := keyconfig.Load[person](src)
		if !errors.Is(err, keyconfig.ErrMissingRequired) {
			t.Fatalf("Load() error = %v, want ErrMissingRequired", err)
		}

		var fe *keyconfig.FieldError
		if !errors.As(err, &fe) {
			t.Fatalf("Load() error is %T, want *FieldError", err)
		}
		if fe.Field != "Name" || fe.Key != "IpAddress" || fe.Op != keyconfig.OpLoad {
			t.Errorf("FieldError = %+v, want field Name key IpAddress op load", fe)
		}
	})

	t.Run("save empty string", func(t *testing.T) {
		err := keyconfig.Save(src, &person{Occupation: "Tester"})
		if !errors.Is(err, keyconfig.ErrMissingRequired) {
			t.Fatalf("Save() error = %v, want ErrMissingRequired", err)
		}
	})

	t.Run("save nil pointer", func(t *testing.T) {
		err := keyconfig.Save(memory.New(), &requiredPointer{})
		if !errors.Is(err, keyconfig.ErrMissingRequired) {
			t.Fatalf("Save() error = %v, want ErrMissingRequired", err)
		}
	})
}

func TestRequiredEmptyString(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"IpAddress":  "",
		"Occupation": "",
	}))

	ok, err := keyconfig.CheckRequired[person](src)
	if err != nil {
		t.Fatalf("CheckRequired() error = %v", err)
	}
	if ok {
		t.Error("CheckRequired() = true, want false for an empty required string")
	}

	_, err = keyconfig.Load[person](src)
	if !errors.Is(err, keyconfig.ErrMissingRequired) {
		t.Fatalf("Load() error = %v, want ErrMissingRequired", err)
	}

	err = keyconfig.Save(src, &person{})
	if !errors.Is(err, keyconfig.ErrMissingRequired) {
		t.Fatalf("Save() error = %v, want ErrMissingRequired", err)
	}

	// an optional empty string is a value, not a request for the default
	if err := src.SetValue("IpAddress", "10.0.0.1", nil, reflect.TypeFor[string]()); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	got, err := keyconfig.Load[person](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Occupation != "" {
		t.Errorf("Occupation = %q, want empty", got.Occupation)
	}
	if err := keyconfig.Save(src, got); err != nil {
		t.Errorf("Save() of a loaded instance error = %v", err)
	}
}

func TestCheckRequired(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{
			name:   "all present",
			values: map[string]any{"Host": "localhost", "Retries": 2},
			want:   true,
		},
		{
			name:   "missing text",
			values: map[string]any{"Retries": 2},
			want:   false,
		},
		{
			name:   "empty text",
			values: map[string]any{"Host": "", "Retries": 2},
			want:   false,
		},
		{
			// numbers cannot represent absence and are never reported missing
			name:   "missing number",
			values: map[string]any{"Host": "localhost"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := memory.New(memory.WithValues(tt.values))
			got, err := keyconfig.CheckRequired[serverSettings](src)
			if err != nil {
				t.Fatalf("CheckRequired() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckRequired_ReadFailure(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"Host": "localhost",
		"Port": "not-a-port",
	}))

	ok, err := keyconfig.CheckRequired[serverSettings](src)
	if ok {
		t.Error("CheckRequired() = true on read failure")
	}
	if !errors.Is(err, keyconfig.ErrSourceRead) {
		t.Fatalf("CheckRequired() error = %v, want ErrSourceRead", err)
	}
	if errors.Is(err, keyconfig.ErrMissingRequired) {
		t.Error("read failure must not be reported as a missing value")
	}

	var pe *convert.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error chain does not contain *convert.ParseError: %v", err)
	}
	if !strings.Contains(err.Error(), `"Port"`) {
		t.Errorf("error %q does not name the key", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"Host":    "localhost",
		"Retries": 1,
	}))

	got, err := keyconfig.Load[serverSettings](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", got.Port)
	}
	if got.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", got.Timeout)
	}
	if got.Debug {
		t.Error("Debug = true, want zero value")
	}
	if got.Ratio != 0 {
		t.Errorf("Ratio = %v, want zero value", got.Ratio)
	}
	if !got.Started.IsZero() {
		t.Errorf("Started = %v, want zero time", got.Started)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
	if got.MaxConns != nil {
		t.Errorf("MaxConns = %v, want nil", *got.MaxConns)
	}
}

func TestFulfill_OverwritesWithDefault(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{"Host": "h", "Retries": 1}))
	cfg := &serverSettings{Port: 1, Debug: true}

	if err := keyconfig.Fulfill(src, cfg); err != nil {
		t.Fatalf("Fulfill() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Debug {
		t.Error("Debug left at previous value, want reset to zero")
	}
}

func TestLoad_ConvertsStoredStrings(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{
		"Host":           "localhost",
		"Port":           "9000",
		"Debug":          "true",
		"RequestTimeout": "2m",
		"Tags":           "a, b",
		"MaxConns":       "12",
		"Retries":        "5",
	}))

	got, err := keyconfig.Load[serverSettings](src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Port != 9000 || !got.Debug || got.Timeout != 2*time.Minute || got.Retries != 5 {
		t.Errorf("Load() = %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v, want [a b]", got.Tags)
	}
	if got.MaxConns == nil || *got.MaxConns != 12 {
		t.Errorf("MaxConns = %v, want 12", got.MaxConns)
	}
}

func TestLoad_UnsupportedType(t *testing.T) {
	src := memory.New(memory.WithName("settings-store"))

	got, err := keyconfig.Load[withMap](src)
	if got != nil {
		t.Error("Load() constructed an instance for an unsupported type")
	}
	if !errors.Is(err, keyconfig.ErrUnsupportedType) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedType", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Labels") || !strings.Contains(msg, "settings-store") {
		t.Errorf("error %q should name the field and the source", msg)
	}
}

func TestLoad_NotAStruct(t *testing.T) {
	_, err := keyconfig.Load[int](memory.New())
	if !errors.Is(err, keyconfig.ErrConstruction) {
		t.Fatalf("Load() error = %v, want ErrConstruction", err)
	}
}

func TestFulfill_NilInstance(t *testing.T) {
	err := keyconfig.Fulfill[person](memory.New(), nil)
	if !errors.Is(err, keyconfig.ErrConstruction) {
		t.Fatalf("Fulfill() error = %v, want ErrConstruction", err)
	}
}

func TestSave_ReadOnlySource(t *testing.T) {
	m := mocks.NewMockSource(t)
	m.EXPECT().CanSet().Return(false)
	m.EXPECT().Name().Return("readonly").Maybe()

	err := keyconfig.Save(m, &person{Name: "Tim"})
	if !errors.Is(err, keyconfig.ErrNotSupported) {
		t.Fatalf("Save() error = %v, want ErrNotSupported", err)
	}

	m.AssertNotCalled(t, "SetValue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "CanHandle", mock.Anything)
}

func TestSave_ReadOnlyMemorySource(t *testing.T) {
	src := memory.New(memory.WithReadOnly())

	err := keyconfig.Save(src, &person{Name: "Tim"})
	if !errors.Is(err, keyconfig.ErrNotSupported) {
		t.Fatalf("Save() error = %v, want ErrNotSupported", err)
	}
	if len(src.Keys()) != 0 {
		t.Errorf("read-only source was written: %v", src.Keys())
	}
}

func TestSave_WriteFailure(t *testing.T) {
	diskFull := errors.New("disk full")
	personType := reflect.TypeFor[person]()
	stringType := reflect.TypeFor[string]()

	m := mocks.NewMockSource(t)
	m.EXPECT().CanSet().Return(true)
	m.EXPECT().Name().Return("failing")
	m.EXPECT().CanHandle(stringType).Return(true)
	m.EXPECT().SetValue("IpAddress", "Tim", personType, stringType).Return(diskFull).Once()

	err := keyconfig.Save(m, &person{Name: "Tim", Occupation: "Tester"})
	if !errors.Is(err, keyconfig.ErrSourceWrite) {
		t.Fatalf("Save() error = %v, want ErrSourceWrite", err)
	}
	if !errors.Is(err, diskFull) {
		t.Errorf("Save() error = %v, want cause %v", err, diskFull)
	}

	// fail fast: the second field is never written
	m.AssertNotCalled(t, "SetValue", "Occupation", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoad_StopsAtFirstFailure(t *testing.T) {
	personType := reflect.TypeFor[person]()
	stringType := reflect.TypeFor[string]()

	m := mocks.NewMockSource(t)
	m.EXPECT().Name().Return("mock")
	m.EXPECT().CanHandle(stringType).Return(true)
	m.EXPECT().GetValue("IpAddress", personType, stringType).Return(nil, false, nil).Once()

	_, err := keyconfig.Load[person](m)
	if !errors.Is(err, keyconfig.ErrMissingRequired) {
		t.Fatalf("Load() error = %v, want ErrMissingRequired", err)
	}
	m.AssertNotCalled(t, "GetValue", "Occupation", mock.Anything, mock.Anything)
}

func TestLoad_SourceError(t *testing.T) {
	boom := errors.New("connection reset")
	stringType := reflect.TypeFor[string]()

	m := mocks.NewMockSource(t)
	m.EXPECT().Name().Return("remote")
	m.EXPECT().CanHandle(stringType).Return(true)
	m.EXPECT().GetValue("IpAddress", mock.Anything, stringType).Return(nil, false, boom)

	_, err := keyconfig.Load[person](m)
	if !errors.Is(err, keyconfig.ErrSourceRead) || !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want ErrSourceRead wrapping %v", err, boom)
	}
}

func TestManager_WithLogger(t *testing.T) {
	src := memory.New(memory.WithValues(map[string]any{"IpAddress": "Tim"}))
	mgr := keyconfig.New[person](keyconfig.WithLogger(logging.ForTest(t)))

	got, err := mgr.Load(src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Occupation != "" {
		t.Errorf("Occupation = %q, want empty default", got.Occupation)
	}

	table, err := mgr.Table(src)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if got := table.Keys(); !reflect.DeepEqual(got, []string{"IpAddress", "Occupation"}) {
		t.Errorf("Keys() = %v", got)
	}
}
