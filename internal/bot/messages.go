package bot

import (
	"errors"

	"golang.org/x/text/language"

	"videobot/internal/kling"
)

// MessageKey identifies a user-facing notification independent of locale.
type MessageKey string

const (
	MsgWelcome       MessageKey = "welcome"
	MsgImageReceived MessageKey = "image_received"
	MsgNeedImage     MessageKey = "need_image"
	MsgNeedPrompt    MessageKey = "need_prompt"
	MsgCreating      MessageKey = "creating"
	MsgSubmitted     MessageKey = "submitted"
	MsgVideoCaption  MessageKey = "video_caption"
	MsgReadyNoURL    MessageKey = "ready_no_url"

	MsgSubmitFailed  MessageKey = "submit_failed"
	MsgJobFailed     MessageKey = "job_failed"
	MsgJobTimedOut   MessageKey = "job_timed_out"
	MsgJobPollFailed MessageKey = "job_poll_failed"
)

// supportedLocales ordering must match the catalog columns below.
var supportedLocales = []language.Tag{
	language.English,
	language.Russian,
	language.Indonesian,
}

var catalogs = map[MessageKey][]string{
	MsgWelcome: {
		"Hi! Send me a photo and then a text prompt, and I will turn it into a video.",
		"Привет! Отправь мне фото, а потом текст с описанием — я создам из него видео.",
		"Halo! Kirim foto lalu teks deskripsi, dan saya akan membuat video dari itu.",
	},
	MsgImageReceived: {
		"Photo received! Now send a prompt describing the video.",
		"Фото получено! Теперь отправь описание (prompt) для видео.",
		"Foto diterima! Sekarang kirim deskripsi (prompt) untuk video.",
	},
	MsgNeedImage: {
		"Please send a photo first.",
		"Сначала отправь фото, пожалуйста.",
		"Silakan kirim foto terlebih dahulu.",
	},
	MsgNeedPrompt: {
		"The prompt cannot be empty. Send a photo and then a text description.",
		"Описание не может быть пустым. Отправь фото, а затем текст.",
		"Deskripsi tidak boleh kosong. Kirim foto lalu teksnya.",
	},
	MsgCreating: {
		"Creating the video... hold on.",
		"Создаю видео... Подожди немного.",
		"Membuat video... mohon tunggu.",
	},
	MsgSubmitted: {
		"Job created. Waiting for the result...",
		"Задача создана. Жду результат...",
		"Tugas dibuat. Menunggu hasil...",
	},
	MsgVideoCaption: {
		"Here is your video 🎬",
		"Вот твоё видео 🎬",
		"Ini videomu 🎬",
	},
	MsgReadyNoURL: {
		"The video is ready, but no download URL was returned.",
		"Видео готово, но URL получить не удалось.",
		"Video sudah siap, tetapi URL tidak tersedia.",
	},
	MsgSubmitFailed: {
		"Could not create the video job. Please try again with a new photo.",
		"Не удалось создать задачу. Попробуй ещё раз с новым фото.",
		"Gagal membuat tugas video. Coba lagi dengan foto baru.",
	},
	MsgJobFailed: {
		"The rendering service reported the job as failed.",
		"Задача завершилась с ошибкой на стороне сервиса.",
		"Layanan rendering melaporkan tugas gagal.",
	},
	MsgJobTimedOut: {
		"Timed out waiting for the video. Please try again.",
		"Превышено время ожидания результата. Попробуй ещё раз.",
		"Waktu tunggu video habis. Silakan coba lagi.",
	},
	MsgJobPollFailed: {
		"Could not check the job status. Please try again.",
		"Не удалось проверить статус задачи. Попробуй ещё раз.",
		"Gagal memeriksa status tugas. Silakan coba lagi.",
	},
}

// Catalog renders user-facing text for a requested locale, falling back to
// English for anything it cannot match.
type Catalog struct {
	matcher language.Matcher
}

// NewCatalog builds a catalog over the supported locales.
func NewCatalog() *Catalog {
	return &Catalog{matcher: language.NewMatcher(supportedLocales)}
}

// Text returns the message for key in the closest supported locale.
func (c *Catalog) Text(locale string, key MessageKey) string {
	variants, ok := catalogs[key]
	if !ok {
		return ""
	}
	_, index := language.MatchStrings(c.matcher, locale)
	if index < 0 || index >= len(variants) {
		index = 0
	}
	return variants[index]
}

// RenderError maps a job or submission error to its user-facing notification.
// Error details stay in the logs; users get a stable message per kind.
func (c *Catalog) RenderError(locale string, err error) string {
	var submissionErr *kling.SubmissionError
	var pollErr *kling.PollError
	switch {
	case errors.Is(err, kling.ErrTaskFailed):
		return c.Text(locale, MsgJobFailed)
	case errors.Is(err, kling.ErrAwaitTimeout):
		return c.Text(locale, MsgJobTimedOut)
	case errors.As(err, &pollErr):
		return c.Text(locale, MsgJobPollFailed)
	case errors.As(err, &submissionErr), errors.Is(err, kling.ErrMissingTaskID):
		return c.Text(locale, MsgSubmitFailed)
	default:
		return c.Text(locale, MsgSubmitFailed)
	}
}
