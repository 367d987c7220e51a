package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The selfie page runs in the executor browser. It resolves the token
// back into metadata, loads the external liveness SDK and reports the
// capture result to the finish endpoint. The token in the URL is the
// only thing it starts with.
var selfiePageTpl = template.Must(template.New("selfie").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Selfie Verification</title>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
</head>
<body style="margin:0; font-family: system-ui, sans-serif; background:#000; color:#fff;">
  <div id="debug" style="position:fixed;top:8px;left:8px;font-size:11px;background:rgba(0,0,0,0.6);padding:4px 6px;border-radius:4px;z-index:999999;">
    loading...
  </div>

  <script>
    (function () {
      var debugEl = document.getElementById('debug');
      function dbg(msg) {
        try { console.log('[SELFIE]', msg); } catch (e) {}
        if (debugEl) debugEl.textContent = msg;
      }

      var token = {{.Token}};
      if (!token) {
        dbg('missing c param');
        return;
      }

      function finish(result) {
        fetch('/selfie/finish', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({ token: token, result: result })
        }).then(function () {
          dbg('result recorded');
        }).catch(function () {
          // Retried by the SDK callback; the server treats duplicates
          // as already recorded.
          dbg('finish failed, will retry');
        });
      }

      fetch('/selfie/resolve?c=' + encodeURIComponent(token))
        .then(function (res) {
          if (!res.ok) { throw new Error('resolve failed: ' + res.status); }
          return res.json();
        })
        .then(function (body) {
          var meta = body.meta || {};
          if (!meta.userId || !meta.transactionId) {
            dbg('no userId / transactionId in session');
            return;
          }

          dbg('loading SDK...');

          var s = document.createElement('script');
          s.src = {{.SDKURL}};
          s.async = true;
          s.onload = function () {
            if (typeof window.OzLiveness !== 'object') {
              dbg('OzLiveness not found');
              return;
            }
            window.OzLiveness.open({
              lang: 'en',
              meta: {
                user_id: meta.userId,
                transaction_id: meta.transactionId
              },
              on_complete: function (res) {
                finish({ captureId: res && res.event_session_id });
              }
            });
            dbg('capture started');
          };
          s.onerror = function () { dbg('SDK load error'); };
          document.head.appendChild(s);
        })
        .catch(function (e) {
          dbg('session expired or invalid');
        });
    })();
  </script>
</body>
</html>`))

type selfiePageData struct {
	Token  string
	SDKURL string
}

func (h *Handler) selfiePage(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")

	err := selfiePageTpl.Execute(c.Writer, selfiePageData{
		Token:  c.Query("c"),
		SDKURL: h.sdkURL,
	})
	if err != nil {
		_ = c.Error(err)
	}
}
