package render

const pageStyle = `
body { font-family: "Noto Sans TC", system-ui, sans-serif; margin: 0 auto; max-width: 1200px; padding: 24px; color: #222; }
h1 { margin-bottom: 4px; }
.caption { color: #888; font-size: 0.9em; }
hr { border: none; border-top: 1px solid #eee; margin: 20px 0; }
.columns { display: grid; grid-template-columns: repeat(3, 1fr); gap: 24px; }
.btn { display: block; width: 100%; box-sizing: border-box; padding: 8px; border-radius: 8px; font-weight: bold;
       text-align: center; text-decoration: none; border: 1px solid #ddd; background: #fff; color: #222;
       cursor: pointer; transition: all 0.3s ease; }
.btn:hover { transform: translateY(-2px); box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
.btn-primary { background: #ff4b4b; color: #fff; border-color: #ff4b4b; }
.dept-header { padding: 10px; border-radius: 8px 8px 0 0; color: white; text-align: center;
               font-size: 1.2em; font-weight: bold; margin-bottom: 15px; }
.theme-orange { background: linear-gradient(135deg, #ff9a44, #fc6076); }
.theme-blue { background: linear-gradient(135deg, #4facfe, #00f2fe); }
.theme-purple { background: linear-gradient(135deg, #667eea, #764ba2); }
.theme-gray { background: linear-gradient(135deg, #bdc3c7, #2c3e50); }
.card { border: 1px solid #e6e6e6; border-radius: 8px; padding: 12px; margin-bottom: 12px; }
.link-card-title { font-size: 1.1em; font-weight: 600; margin-bottom: 0px; }
.link-card-desc { font-size: 0.9em; color: #666; margin-bottom: 10px; height: 40px; overflow: hidden; }
.info { background: #e8f0fe; color: #1a4d8f; padding: 10px; border-radius: 6px; margin-bottom: 10px; }
.error { background: #fdecea; color: #8a1c1c; padding: 10px; border-radius: 6px; margin-top: 10px; }
.success { background: #e6f4ea; color: #1e6b34; padding: 10px; border-radius: 6px; margin-bottom: 10px; }
.editor table { width: 100%; border-collapse: collapse; }
.editor td, .editor th { border: 1px solid #eee; padding: 4px; }
.editor input[type=text], .editor input[type=url] { width: 100%; box-sizing: border-box; }
input[type=password] { width: 100%; box-sizing: border-box; padding: 6px; margin: 6px 0; }
`
