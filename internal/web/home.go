package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Code Submitter</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <h1>Code Submitter</h1>
        <p>Signed in as <strong>`+templ.EscapeString(data.Username)+`</strong>`)
		if data.Team != "" {
			_, _ = io.WriteString(w, ` (team <strong>`+templ.EscapeString(data.Team)+`</strong>)`)
		}
		_, _ = io.WriteString(w, `</p>
      </header>
`)
		if data.Team != "" {
			if err := teamPanel(data).Render(ctx, w); err != nil {
				return err
			}
		}
		if data.IsBlueshirt {
			if err := blueshirtPanel(data).Render(ctx, w); err != nil {
				return err
			}
		}
		_, _ = io.WriteString(w, `    </main>
  </body>
</html>
`)
		return nil
	})
}

func teamPanel(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Upload a new submission</h2>
        <form method="post" action="/upload" enctype="multipart/form-data">
          <input type="file" name="archive" accept=".zip,application/zip" required/>
          <label><input type="checkbox" name="choose" value="on" checked/> Use this archive for matches</label>
          <button type="submit" class="primary">Upload</button>
        </form>
      </section>

      <section class="panel">
        <h2>Chosen submission</h2>
`)
		if data.Chosen == nil {
			_, _ = io.WriteString(w, `        <p>Your team has not chosen an archive yet.</p>
`)
		} else {
			_, _ = io.WriteString(w, `        <p id="chosen">Archive <a href="`+archiveURL(data.Chosen.ArchiveID)+`">`+formatID(data.Chosen.ArchiveID)+`</a>, chosen by `+
				templ.EscapeString(data.Chosen.Username)+` at `+formatTime(data.Chosen.Created)+`.</p>
`)
		}
		_, _ = io.WriteString(w, `      </section>
`)
		return uploadsTable(data).Render(ctx, w)
	})
}

func uploadsTable(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Uploads</h2>
`)
		if len(data.Uploads) == 0 {
			_, _ = io.WriteString(w, `        <p>Nothing uploaded yet.</p>
      </section>
`)
			return nil
		}
		_, _ = io.WriteString(w, `        <table id="uploads">
          <thead><tr><th>Id</th><th>Uploaded by</th><th>Uploaded at</th><th></th></tr></thead>
          <tbody>
`)
		for _, upload := range data.Uploads {
			chosen := data.Chosen != nil && data.Chosen.ArchiveID == upload.ID
			_, _ = io.WriteString(w, `            <tr>
              <td><a href="`+archiveURL(upload.ID)+`">`+formatID(upload.ID)+`</a></td>
              <td>`+templ.EscapeString(upload.Username)+`</td>
              <td>`+formatTime(upload.Created)+`</td>
              <td>`)
			switch {
			case chosen:
				_, _ = io.WriteString(w, `Chosen`)
			case upload.Team == data.Team:
				_, _ = io.WriteString(w, `<form method="post" action="/choose"><input type="hidden" name="archive_id" value="`+formatID(upload.ID)+`"/><button type="submit">Choose</button></form>`)
			}
			_, _ = io.WriteString(w, `</td>
            </tr>
`)
		}
		_, _ = io.WriteString(w, `          </tbody>
        </table>
      </section>
`)
		return nil
	})
}

func blueshirtPanel(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Chosen submissions</h2>
`)
		if len(data.Submissions) == 0 {
			_, _ = io.WriteString(w, `        <p>No team has chosen an archive yet.</p>
`)
		} else {
			_, _ = io.WriteString(w, `        <table id="submissions">
          <thead><tr><th>Team</th><th>Archive</th><th>Chosen at</th></tr></thead>
          <tbody>
`)
			for _, info := range data.Submissions {
				_, _ = io.WriteString(w, `            <tr><td>`+templ.EscapeString(info.Team)+`</td><td>`+formatID(info.ArchiveID)+`</td><td>`+formatTime(info.ChosenAt)+`</td></tr>
`)
			}
			_, _ = io.WriteString(w, `          </tbody>
        </table>
`)
		}
		_, _ = io.WriteString(w, `        <p><a href="/download-submissions">Download current submissions</a></p>
      </section>

      <section class="panel">
        <h2>Sessions</h2>
        <form method="post" action="/create-session">
          <input name="name" placeholder="Session name" autocomplete="off" required/>
          <button type="submit" class="secondary">Create session</button>
        </form>
`)
		if len(data.Sessions) > 0 {
			_, _ = io.WriteString(w, `        <ul id="sessions">
`)
			for _, session := range data.Sessions {
				_, _ = io.WriteString(w, `          <li><a href="`+sessionDownloadURL(session.ID)+`">`+templ.EscapeString(session.Name)+`</a> created by `+
					templ.EscapeString(session.Username)+` at `+formatTime(session.Created)+`</li>
`)
			}
			_, _ = io.WriteString(w, `        </ul>
`)
		}
		_, _ = io.WriteString(w, `      </section>
`)
		return nil
	})
}
