package speech

import (
	"errors"
	"reflect"
	"testing"

	"github.com/verte-zerg/stretchy/internal/model"
)

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en           (en 2)
 5  ko              --/M      Korean             ko
`
	got := ParseEspeakVoices(out)
	want := []model.VoiceOption{
		{Name: "Afrikaans", Locale: "af"},
		{Name: "English_(Great_Britain)", Locale: "en-gb"},
		{Name: "Korean", Locale: "ko"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected voices: %+v", got)
	}
}

func TestParseSayVoices(t *testing.T) {
	out := "Alex                en_US    # Most people recognize me by my voice.\n" +
		"Eddy (German (Germany)) de_DE    # Hallo! Ich heiße Eddy.\n" +
		"Yuna                ko_KR    # 안녕하세요. 제 이름은 유나입니다.\n\n"
	got := ParseSayVoices(out)
	want := []model.VoiceOption{
		{Name: "Alex", Locale: "en_US"},
		{Name: "Eddy (German (Germany))", Locale: "de_DE"},
		{Name: "Yuna", Locale: "ko_KR"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected voices: %+v", got)
	}
}

func TestNewExecRegistryRejectsUnknownFormat(t *testing.T) {
	if _, err := NewExecRegistry("espeak-ng --voices", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := NewExecRegistry("", FormatEspeak); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestExecSpeakerExpand(t *testing.T) {
	s := &ExecSpeaker{args: []string{"espeak-ng", "-v", "{voice}", "-s", "{wpm}", "{text}"}}
	got := s.expand(model.Utterance{Text: "스트레칭 하셔요 ~", Lang: "ko-KR", Rate: 1.0})
	want := []string{"espeak-ng", "-v", "ko", "-s", "175", "스트레칭 하셔요 ~"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args: %q", got)
	}

	voice := model.VoiceOption{Name: "Yuna", Locale: "ko_KR"}
	say := &ExecSpeaker{args: []string{"say", "-v", "{voice}", "-r", "{wpm}", "{text}"}}
	got = say.expand(model.Utterance{Text: "hi", Lang: "ko-KR", Rate: 2, Voice: &voice})
	want = []string{"say", "-v", "Yuna", "-r", "350", "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args: %q", got)
	}

	got = say.expand(model.Utterance{Text: "hi"})
	want = []string{"say", "-r", "175", "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected voice flag dropped, got %q", got)
	}
}

func TestNewExecSpeakerMissingProgram(t *testing.T) {
	_, err := NewExecSpeaker("definitely-not-a-speech-program-xyz {text}")
	if !errors.Is(err, ErrSpeechUnavailable) {
		t.Fatalf("expected ErrSpeechUnavailable, got %v", err)
	}
}

func TestDesktopAlertNilSafe(t *testing.T) {
	var a *DesktopAlert
	a.Notify("ignored")

	var sent []string
	a = NewDesktopAlert("stretchy", nil)
	a.send = func(title, message string) error {
		sent = append(sent, title+": "+message)
		return errors.New("no notification daemon")
	}
	a.Notify(DefaultBanner)
	if len(sent) != 1 || sent[0] != "stretchy: "+DefaultBanner {
		t.Fatalf("unexpected alerts: %q", sent)
	}
}
